package cancellation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompute(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) time.Time { return now.Add(d) }
	ptr := func(t time.Time) *time.Time { return &t }

	tests := []struct {
		name          string
		policy        Policy
		wantPercent   int
		wantFree      bool
		wantRemaining time.Duration
		wantText      string
	}{
		{
			name:          "starts in 3h with 2h window",
			policy:        Policy{ClassStart: at(3 * time.Hour), WindowHours: 2},
			wantPercent:   100,
			wantFree:      true,
			wantRemaining: time.Hour,
			wantText:      "1h",
		},
		{
			name:        "starts in 1h with 2h window",
			policy:      Policy{ClassStart: at(time.Hour), WindowHours: 2},
			wantPercent: 50,
		},
		{
			name:        "started 5 minutes ago",
			policy:      Policy{ClassStart: at(-5 * time.Minute), WindowHours: 2},
			wantPercent: 50,
		},
		{
			name:        "started 15 minutes ago",
			policy:      Policy{ClassStart: at(-15 * time.Minute), WindowHours: 2},
			wantPercent: 0,
		},
		{
			name:        "exactly at the end of the grace period",
			policy:      Policy{ClassStart: at(-GracePeriod), WindowHours: 2},
			wantPercent: 50,
		},
		{
			name:        "exactly at the window deadline",
			policy:      Policy{ClassStart: at(2 * time.Hour), WindowHours: 2},
			wantPercent: 50,
		},
		{
			name:          "no window means always free",
			policy:        Policy{ClassStart: at(30 * time.Minute)},
			wantPercent:   100,
			wantFree:      true,
			wantRemaining: 30 * time.Minute,
			wantText:      "30m",
		},
		{
			name:        "no window but class long over",
			policy:      Policy{ClassStart: at(-time.Hour)},
			wantPercent: 0,
		},
		{
			name:        "no window during grace period",
			policy:      Policy{ClassStart: at(-5 * time.Minute)},
			wantPercent: 100,
			wantFree:    true,
		},
		{
			name: "active privilege overrides window",
			policy: Policy{
				ClassStart:      at(time.Hour),
				WindowHours:     24,
				FreeCancelUntil: ptr(at(45 * time.Minute)),
			},
			wantPercent:   100,
			wantFree:      true,
			wantRemaining: 45 * time.Minute,
			wantText:      "45m",
		},
		{
			name: "expired privilege falls back to window",
			policy: Policy{
				ClassStart:      at(time.Hour),
				WindowHours:     24,
				FreeCancelUntil: ptr(at(-time.Minute)),
			},
			wantPercent: 50,
		},
		{
			name: "privilege does not beat the grace cutoff",
			policy: Policy{
				ClassStart:      at(-20 * time.Minute),
				WindowHours:     2,
				FreeCancelUntil: ptr(at(time.Hour)),
			},
			wantPercent: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(now, tt.policy)
			assert.Equal(t, tt.wantPercent, got.RefundPercent)
			assert.Equal(t, tt.wantFree, got.IsFree)
			assert.Equal(t, tt.wantRemaining, got.TimeRemaining)
			assert.Equal(t, tt.wantText, got.TimeRemainingText)
		})
	}
}

func TestComputeDeadline(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	start := now.Add(30 * time.Hour)

	got := Compute(now, Policy{ClassStart: start, WindowHours: 24})
	if assert.NotNil(t, got.Deadline) {
		assert.Equal(t, start.Add(-24*time.Hour), *got.Deadline)
	}
	assert.Equal(t, "6h", got.TimeRemainingText)
}

func TestRefundAmount(t *testing.T) {
	assert.Equal(t, 10, RefundAmount(10, 100))
	assert.Equal(t, 5, RefundAmount(10, 50))
	assert.Equal(t, 3, RefundAmount(7, 50))
	assert.Equal(t, 0, RefundAmount(7, 0))
	assert.Equal(t, 0, RefundAmount(0, 100))
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, ""},
		{-time.Minute, ""},
		{30 * time.Second, "less than a minute"},
		{59*time.Minute + 59*time.Second, "59m"},
		{2*time.Hour + 20*time.Minute, "2h 20m"},
		{5 * time.Hour, "5h"},
		{50*time.Hour + 10*time.Minute, "2d 2h"},
		{72 * time.Hour, "3d"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRemaining(tt.in), tt.in.String())
	}
}
