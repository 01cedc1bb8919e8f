package classtemplate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRanges(t *testing.T) {
	valid := func() ClassTemplate {
		return ClassTemplate{
			Name:                    "Morning yoga",
			DurationMinutes:         60,
			Capacity:                12,
			PriceCredits:            10,
			CancellationWindowHours: 24,
		}
	}

	tests := []struct {
		name   string
		mutate func(*ClassTemplate)
		want   error
	}{
		{"valid", func(*ClassTemplate) {}, nil},
		{"free class with no window", func(t *ClassTemplate) { t.PriceCredits = 0; t.CancellationWindowHours = 0 }, nil},
		{"upper bounds", func(t *ClassTemplate) {
			t.DurationMinutes, t.Capacity, t.PriceCredits, t.CancellationWindowHours = 600, 500, 1000, 168
		}, nil},
		{"empty name", func(t *ClassTemplate) { t.Name = "" }, ErrNameRequired},
		{"too short", func(t *ClassTemplate) { t.DurationMinutes = 4 }, ErrInvalidDuration},
		{"too long", func(t *ClassTemplate) { t.DurationMinutes = 601 }, ErrInvalidDuration},
		{"no seats", func(t *ClassTemplate) { t.Capacity = 0 }, ErrInvalidCapacity},
		{"too many seats", func(t *ClassTemplate) { t.Capacity = 501 }, ErrInvalidCapacity},
		{"negative price", func(t *ClassTemplate) { t.PriceCredits = -1 }, ErrInvalidPrice},
		{"price too high", func(t *ClassTemplate) { t.PriceCredits = 1001 }, ErrInvalidPrice},
		{"window too wide", func(t *ClassTemplate) { t.CancellationWindowHours = 169 }, ErrInvalidWindow},
		{"negative window", func(t *ClassTemplate) { t.CancellationWindowHours = -1 }, ErrInvalidWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := valid()
			tt.mutate(&tpl)
			err := tpl.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
