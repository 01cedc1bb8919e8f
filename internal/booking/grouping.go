package booking

import (
	"sort"
	"time"

	"github.com/nekogravitycat/class-booking-backend/internal/pkg/tz"
)

// DefaultGrace keeps a class in the upcoming list for a while after it starts.
const DefaultGrace = 30 * time.Minute

// Views of the "my bookings" screen.
const (
	ViewUpcoming  = "upcoming"
	ViewHistory   = "history"
	ViewCancelled = "cancelled"
	ViewPending   = "pending"
)

// DayGroup is one calendar bucket of bookings.
type DayGroup struct {
	Date     string
	Label    string
	Bookings []*Booking
}

// LatestPerClass keeps the most recently created booking of every class instance.
// Earlier attempts, such as a cancelled booking followed by a rebooking, are dropped.
func LatestPerClass(items []*Booking) []*Booking {
	latest := make(map[string]*Booking, len(items))
	for _, b := range items {
		cur, ok := latest[b.ClassInstanceID]
		if !ok || b.CreatedAt.After(cur.CreatedAt) {
			latest[b.ClassInstanceID] = b
		}
	}

	out := make([]*Booking, 0, len(latest))
	for _, b := range items {
		if latest[b.ClassInstanceID] == b {
			out = append(out, b)
		}
	}
	return out
}

// Partition splits bookings into upcoming and history. A live booking stays upcoming
// until grace has passed since its class started; cancelled bookings are always history.
func Partition(items []*Booking, now time.Time, grace time.Duration) (upcoming, history []*Booking) {
	for _, b := range items {
		if b.Status != StatusCancelled && b.ClassStart.Add(grace).After(now) {
			upcoming = append(upcoming, b)
		} else {
			history = append(history, b)
		}
	}
	return upcoming, history
}

// FilterByStatus keeps bookings with the given status.
func FilterByStatus(items []*Booking, status Status) []*Booking {
	var out []*Booking
	for _, b := range items {
		if b.Status == status {
			out = append(out, b)
		}
	}
	return out
}

// GroupByDay buckets bookings by the calendar day of their class in the business
// timezone. Buckets and the bookings inside them are sorted by class start.
func GroupByDay(items []*Booking, now time.Time, ascending bool) []DayGroup {
	sorted := make([]*Booking, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if ascending {
			return sorted[i].ClassStart.Before(sorted[j].ClassStart)
		}
		return sorted[i].ClassStart.After(sorted[j].ClassStart)
	})

	var groups []DayGroup
	index := map[string]int{}
	for _, b := range sorted {
		loc := tz.LoadOrUTC(b.Timezone)
		date := tz.FormatDate(b.ClassStart, loc)
		i, ok := index[date]
		if !ok {
			i = len(groups)
			index[date] = i
			groups = append(groups, DayGroup{
				Date:  date,
				Label: DayLabel(b.ClassStart, now, loc),
			})
		}
		groups[i].Bookings = append(groups[i].Bookings, b)
	}

	// Bookings of different businesses can land on the same date from different
	// instants, so order the buckets by date as well.
	sort.SliceStable(groups, func(i, j int) bool {
		if ascending {
			return groups[i].Date < groups[j].Date
		}
		return groups[i].Date > groups[j].Date
	})
	return groups
}

// DayLabel names the day of t relative to now, both seen in loc.
func DayLabel(t, now time.Time, loc *time.Location) string {
	local := t.In(loc)
	switch diff := tz.DaysBetween(now, t, loc); {
	case diff == 0:
		return "Today"
	case diff == 1:
		return "Tomorrow"
	case diff >= 2 && diff <= 6:
		return local.Weekday().String()
	}

	if local.Year() != now.In(loc).Year() {
		return local.Format("Jan 2, 2006")
	}
	return local.Format("Jan 2")
}
