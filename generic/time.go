package generic

import (
	"time"
)

// =============================================================================
// DATE - Local calendar day, stored as "YYYY-MM-DD"
// =============================================================================

// DateLayout is the wire and storage format of a Date.
const DateLayout = "2006-01-02"

// Date is a calendar day. Zero-padded, so string order is calendar order.
type Date string

// ParseDate validates s and returns it as a Date.
func ParseDate(field, s string) (Date, error) {
	if s == "" {
		return "", Invalid(field, "is required")
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", Invalid(field, "must be YYYY-MM-DD, got %q", s)
	}
	return Date(s), nil
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date { return Date(t.Format(DateLayout)) }

func (d Date) String() string { return string(d) }
func (d Date) IsZero() bool   { return d == "" }

// Time returns midnight UTC of d. Invalid dates yield the zero time.
func (d Date) Time() time.Time {
	t, _ := time.Parse(DateLayout, string(d))
	return t
}

func (d Date) AddDays(n int) Date { return DateOf(d.Time().AddDate(0, 0, n)) }

func (d Date) Before(o Date) bool { return d < o }
func (d Date) After(o Date) bool  { return d > o }

// Within reports whether d falls in [from, to].
func (d Date) Within(from, to Date) bool { return d >= from && d <= to }

// InclusiveDaySpan counts calendar days from start to end, both included.
// The distance is taken as an absolute value.
func InclusiveDaySpan(start, end Date) int {
	diff := end.Time().Sub(start.Time())
	if diff < 0 {
		diff = -diff
	}
	return int(diff.Hours()/24) + 1
}

// =============================================================================
// CLOCK TIME - Wall-clock time of day, "HH:MM" 24h
// =============================================================================

// ClockLayout is the wire and storage format of a ClockTime.
const ClockLayout = "15:04"

// ClockTime is a zero-padded 24h "HH:MM". Lexicographic order equals
// chronological order only because both operands are zero-padded.
type ClockTime string

// ParseClock validates s and returns it as a ClockTime.
func ParseClock(field, s string) (ClockTime, error) {
	if s == "" {
		return "", Invalid(field, "is required")
	}
	if len(s) != len(ClockLayout) {
		return "", Invalid(field, "must be zero-padded HH:MM, got %q", s)
	}
	if _, err := time.Parse(ClockLayout, s); err != nil {
		return "", Invalid(field, "must be HH:MM, got %q", s)
	}
	return ClockTime(s), nil
}

// ClockOf returns the wall-clock time of t.
func ClockOf(t time.Time) ClockTime { return ClockTime(t.Format(ClockLayout)) }

func (c ClockTime) String() string         { return string(c) }
func (c ClockTime) After(o ClockTime) bool { return c > o }

// =============================================================================
// CLOCK - Injectable "now"
// =============================================================================

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in a fixed location (local time if nil).
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// ClockFunc adapts a function to Clock. Handy in tests.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}
