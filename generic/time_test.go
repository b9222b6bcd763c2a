package generic

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInclusiveDaySpan(t *testing.T) {
	tests := []struct {
		name       string
		start, end Date
		want       int
	}{
		{"same day", "2024-01-10", "2024-01-10", 1},
		{"three days", "2024-01-10", "2024-01-12", 3},
		{"across month", "2024-01-30", "2024-02-02", 4},
		{"leap day", "2024-02-28", "2024-03-01", 3},
		{"reversed is absolute", "2024-01-12", "2024-01-10", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InclusiveDaySpan(tt.start, tt.end))
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("startDate", "2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, Date("2024-01-10"), d)

	_, err = ParseDate("startDate", "")
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = ParseDate("startDate", "10/01/2024")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "startDate", vErr.Field)
}

func TestParseClock_RequiresZeroPadding(t *testing.T) {
	_, err := ParseClock("time", "8:05")
	assert.ErrorIs(t, err, ErrValidation)

	c, err := ParseClock("time", "08:05")
	require.NoError(t, err)
	assert.True(t, ClockTime("08:16").After(c))
}

func TestDate_AddDaysAndWithin(t *testing.T) {
	d := Date("2024-12-31")
	assert.Equal(t, Date("2025-01-01"), d.AddDays(1))
	assert.True(t, d.Within("2024-12-01", "2024-12-31"))
	assert.False(t, d.Within("2025-01-01", "2025-01-31"))
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2024, 1, 10, 8, 15, 0, 0, time.UTC)
	c := FixedClock(at)
	assert.Equal(t, Date("2024-01-10"), DateOf(c.Now()))
	assert.Equal(t, ClockTime("08:15"), ClockOf(c.Now()))
}

func TestShortCode(t *testing.T) {
	code := ShortCode(8)
	assert.Len(t, code, 8)
	assert.Regexp(t, `^[0-9A-Z]{8}$`, code)
	assert.Len(t, ShortCode(40), 14)

	id := ShortID("lt-", 5)
	assert.Regexp(t, `^lt-[0-9a-f]{5}$`, id)
}
