package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/class-booking-backend/internal/pkg/tz"
)

func mk(id, classID string, status Status, created, start time.Time, zone string) *Booking {
	return &Booking{
		ID:              id,
		ClassInstanceID: classID,
		Status:          status,
		CreatedAt:       created,
		ClassStart:      start,
		Timezone:        zone,
	}
}

func ids(items []*Booking) []string {
	out := make([]string, len(items))
	for i, b := range items {
		out[i] = b.ID
	}
	return out
}

func TestLatestPerClass(t *testing.T) {
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	start := base.Add(72 * time.Hour)

	items := []*Booking{
		mk("old", "yoga", StatusCancelled, base, start, "UTC"),
		mk("spin", "spin", StatusConfirmed, base.Add(time.Minute), start, "UTC"),
		mk("new", "yoga", StatusConfirmed, base.Add(time.Hour), start, "UTC"),
	}

	assert.Equal(t, []string{"spin", "new"}, ids(LatestPerClass(items)))
	assert.Empty(t, LatestPerClass(nil))
}

func TestPartitionGrace(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	items := []*Booking{
		mk("started-20m", "a", StatusConfirmed, now, now.Add(-20*time.Minute), "UTC"),
		mk("started-30m", "b", StatusConfirmed, now, now.Add(-30*time.Minute), "UTC"),
		mk("future", "c", StatusPending, now, now.Add(time.Hour), "UTC"),
		mk("cancelled-future", "d", StatusCancelled, now, now.Add(time.Hour), "UTC"),
	}

	upcoming, history := Partition(items, now, DefaultGrace)
	assert.Equal(t, []string{"started-20m", "future"}, ids(upcoming))
	assert.Equal(t, []string{"started-30m", "cancelled-future"}, ids(history))

	upcoming, _ = Partition(items, now, 0)
	assert.Equal(t, []string{"future"}, ids(upcoming))
}

func TestFilterByStatus(t *testing.T) {
	now := time.Now()
	items := []*Booking{
		mk("1", "a", StatusPending, now, now, "UTC"),
		mk("2", "b", StatusCancelled, now, now, "UTC"),
		mk("3", "c", StatusPending, now, now, "UTC"),
	}
	assert.Equal(t, []string{"1", "3"}, ids(FilterByStatus(items, StatusPending)))
	assert.Nil(t, FilterByStatus(items, StatusCompleted))
}

func TestDayLabel(t *testing.T) {
	loc, err := tz.Load("America/New_York")
	require.NoError(t, err)
	// Friday 2026-05-01 09:00 in New York.
	now := time.Date(2026, 5, 1, 13, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"later today", time.Date(2026, 5, 1, 23, 0, 0, 0, loc), "Today"},
		{"tomorrow", time.Date(2026, 5, 2, 7, 0, 0, 0, loc), "Tomorrow"},
		{"weekday", time.Date(2026, 5, 4, 7, 0, 0, 0, loc), "Monday"},
		{"six days out", time.Date(2026, 5, 7, 7, 0, 0, 0, loc), "Thursday"},
		{"a week out", time.Date(2026, 5, 8, 7, 0, 0, 0, loc), "May 8"},
		{"yesterday", time.Date(2026, 4, 30, 7, 0, 0, 0, loc), "Apr 30"},
		{"next year", time.Date(2027, 1, 3, 7, 0, 0, 0, loc), "Jan 3, 2027"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DayLabel(tt.at, now, loc))
		})
	}
}

func TestGroupByDayUsesBusinessTimezone(t *testing.T) {
	// 2026-05-01 20:00 UTC.
	now := time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)
	// 23:30 UTC is still May 1 in New York but already May 2 in Madrid.
	late := time.Date(2026, 5, 1, 23, 30, 0, 0, time.UTC)

	items := []*Booking{
		mk("madrid", "a", StatusConfirmed, now, late, "Europe/Madrid"),
		mk("ny", "b", StatusConfirmed, now, late, "America/New_York"),
		mk("ny-early", "c", StatusConfirmed, now, late.Add(-time.Hour), "America/New_York"),
	}

	groups := GroupByDay(items, now, true)
	require.Len(t, groups, 2)

	assert.Equal(t, "2026-05-01", groups[0].Date)
	assert.Equal(t, "Today", groups[0].Label)
	assert.Equal(t, []string{"ny-early", "ny"}, ids(groups[0].Bookings))

	assert.Equal(t, "2026-05-02", groups[1].Date)
	assert.Equal(t, "Tomorrow", groups[1].Label)
	assert.Equal(t, []string{"madrid"}, ids(groups[1].Bookings))
}

func TestGroupByDayDescending(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	items := []*Booking{
		mk("first", "a", StatusCompleted, now, time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC), "UTC"),
		mk("second", "b", StatusCompleted, now, time.Date(2026, 5, 3, 9, 0, 0, 0, time.UTC), "UTC"),
		mk("third", "c", StatusCompleted, now, time.Date(2026, 5, 3, 18, 0, 0, 0, time.UTC), "UTC"),
	}

	groups := GroupByDay(items, now, false)
	require.Len(t, groups, 2)
	assert.Equal(t, "May 3", groups[0].Label)
	assert.Equal(t, []string{"third", "second"}, ids(groups[0].Bookings))
	assert.Equal(t, []string{"first"}, ids(groups[1].Bookings))
}
