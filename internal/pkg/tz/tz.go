// Package tz converts between UTC instants and a business's local wall clock.
package tz

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"
)

const (
	DateLayout     = "2006-01-02"
	ClockLayout    = "15:04"
	DateTimeLayout = "2006-01-02 15:04"
)

var ErrUnknownTimezone = errors.New("unknown timezone")

var (
	mu    sync.RWMutex
	cache = map[string]*time.Location{}
)

// Load returns the location for an IANA name. Results are cached.
func Load(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrUnknownTimezone
	}

	mu.RLock()
	loc, ok := cache[name]
	mu.RUnlock()
	if ok {
		return loc, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTimezone, name)
	}

	mu.Lock()
	cache[name] = loc
	mu.Unlock()
	return loc, nil
}

// LoadOrUTC is Load with a UTC fallback, for read paths that must not fail.
func LoadOrUTC(name string) *time.Location {
	loc, err := Load(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsValid reports whether name is a loadable IANA timezone.
// "Local" is rejected since it depends on the host.
func IsValid(name string) bool {
	if name == "Local" {
		return false
	}
	_, err := Load(name)
	return err == nil
}

// ToBusiness expresses t in the business location.
func ToBusiness(t time.Time, loc *time.Location) time.Time {
	return t.In(loc)
}

// FromBusinessLocal interprets a local date ("2006-01-02") and clock ("15:04")
// in loc and returns the UTC instant.
func FromBusinessLocal(date, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateTimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse local time %q %q: %w", date, clock, err)
	}
	return t.UTC(), nil
}

// StartOfDay returns local midnight of the day containing t, in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// DayRange returns the UTC half-open interval [start, end) covering the local
// calendar date in loc. Days across DST changes are 23 or 25 hours long.
func DayRange(date string, loc *time.Location) (time.Time, time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start.UTC(), end.UTC(), nil
}

// DaysBetween counts calendar days from a to b in loc (negative when b is earlier).
func DaysBetween(a, b time.Time, loc *time.Location) int {
	da := StartOfDay(a, loc)
	db := StartOfDay(b, loc)
	// Normalise through UTC dates so DST-length days still count as one.
	ua := time.Date(da.Year(), da.Month(), da.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(db.Year(), db.Month(), db.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// FormatDate renders t as a local date.
func FormatDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// FormatTime renders t as a local 24h clock.
func FormatTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(ClockLayout)
}
