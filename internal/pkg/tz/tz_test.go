package tz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	loc, err := Load("Europe/Madrid")
	require.NoError(t, err)
	assert.Equal(t, "Europe/Madrid", loc.String())

	again, err := Load("Europe/Madrid")
	require.NoError(t, err)
	assert.Same(t, loc, again)

	_, err = Load("Mars/Olympus")
	assert.ErrorIs(t, err, ErrUnknownTimezone)

	_, err = Load("  ")
	assert.ErrorIs(t, err, ErrUnknownTimezone)
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("America/New_York"))
	assert.True(t, IsValid("UTC"))
	assert.False(t, IsValid("Local"))
	assert.False(t, IsValid("Nowhere/City"))
}

func TestFromBusinessLocal(t *testing.T) {
	loc, err := Load("Europe/Madrid")
	require.NoError(t, err)

	// Summer: UTC+2
	got, err := FromBusinessLocal("2026-07-01", "18:30", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 7, 1, 16, 30, 0, 0, time.UTC), got)

	// Winter: UTC+1
	got, err = FromBusinessLocal("2026-12-01", "18:30", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 12, 1, 17, 30, 0, 0, time.UTC), got)

	_, err = FromBusinessLocal("2026-12-01", "25:00", loc)
	assert.Error(t, err)
}

func TestDayRangeAcrossDST(t *testing.T) {
	loc, err := Load("Europe/Madrid")
	require.NoError(t, err)

	// Clocks go back on 2026-10-25, so the local day lasts 25 hours.
	start, end, err := DayRange("2026-10-25", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 24, 22, 0, 0, 0, time.UTC), start)
	assert.Equal(t, 25*time.Hour, end.Sub(start))
}

func TestDaysBetween(t *testing.T) {
	loc, err := Load("Asia/Tokyo")
	require.NoError(t, err)

	// 23:00 UTC is already the next day in Tokyo.
	a := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	b := time.Date(2026, 10, 19, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysBetween(a, b, loc))
	assert.Equal(t, 0, DaysBetween(a, b, time.UTC))
	assert.Equal(t, -1, DaysBetween(b, a, loc))
}

func TestFormat(t *testing.T) {
	loc, err := Load("America/New_York")
	require.NoError(t, err)

	ts := time.Date(2026, 1, 15, 3, 5, 0, 0, time.UTC)
	assert.Equal(t, "2026-01-14", FormatDate(ts, loc))
	assert.Equal(t, "22:05", FormatTime(ts, loc))
	assert.Equal(t, 0, StartOfDay(ts, loc).Hour())
}
