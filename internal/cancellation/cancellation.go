// Package cancellation decides how much of a booking is refunded when it is
// cancelled at a given moment.
package cancellation

import (
	"fmt"
	"time"
)

// GracePeriod is how long after class start a cancellation still earns a partial refund.
const GracePeriod = 10 * time.Minute

const (
	RefundFull    = 100
	RefundPartial = 50
	RefundNone    = 0
)

// Policy is the input to Compute.
type Policy struct {
	ClassStart time.Time
	// WindowHours is how long before the start a cancellation stays free.
	// Zero means cancellation is always free.
	WindowHours int
	// FreeCancelUntil is an optional privilege that makes cancelling free until it expires.
	FreeCancelUntil *time.Time
}

// Info describes the cancellation terms at a point in time.
type Info struct {
	IsFree            bool
	RefundPercent     int
	TimeRemaining     time.Duration
	TimeRemainingText string
	// Deadline is when the current refund level ends, if it ends at all before class start.
	Deadline *time.Time
}

// Compute applies the refund rules in priority order:
//  1. class started more than GracePeriod ago: nothing back;
//  2. an unexpired free-cancellation privilege: full refund until it expires;
//  3. no window configured: full refund;
//  4. full refund until WindowHours before start, half after that.
func Compute(now time.Time, p Policy) Info {
	if now.After(p.ClassStart.Add(GracePeriod)) {
		return Info{RefundPercent: RefundNone}
	}

	if p.FreeCancelUntil != nil && now.Before(*p.FreeCancelUntil) {
		until := *p.FreeCancelUntil
		return newInfo(RefundFull, until.Sub(now), &until)
	}

	if p.WindowHours <= 0 {
		return newInfo(RefundFull, p.ClassStart.Sub(now), nil)
	}

	deadline := p.ClassStart.Add(-time.Duration(p.WindowHours) * time.Hour)
	if now.Before(deadline) {
		return newInfo(RefundFull, deadline.Sub(now), &deadline)
	}
	return Info{RefundPercent: RefundPartial}
}

func newInfo(percent int, remaining time.Duration, deadline *time.Time) Info {
	if remaining < 0 {
		remaining = 0
	}
	return Info{
		IsFree:            percent == RefundFull,
		RefundPercent:     percent,
		TimeRemaining:     remaining,
		TimeRemainingText: FormatRemaining(remaining),
		Deadline:          deadline,
	}
}

// RefundAmount returns the whole credits returned for a price at percent.
// Fractions are rounded down.
func RefundAmount(price, percent int) int {
	if price <= 0 || percent <= 0 {
		return 0
	}
	if percent >= 100 {
		return price
	}
	return price * percent / 100
}

// FormatRemaining renders a duration truncated to whole minutes:
// "2d 3h", "5h 20m", "45m", "less than a minute", or "" for zero.
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	d = d.Truncate(time.Minute)
	if d == 0 {
		return "less than a minute"
	}

	days := int(d / (24 * time.Hour))
	hours := int(d % (24 * time.Hour) / time.Hour)
	minutes := int(d % time.Hour / time.Minute)

	switch {
	case days > 0 && hours > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case days > 0:
		return fmt.Sprintf("%dd", days)
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
