package domain

import "time"

const (
	DayLayout  = "2006-01-02"
	longLayout = "Monday, January 2, 2006"
)

// NormalizeDate pins t to 00:00:00 UTC of its UTC calendar day.
func NormalizeDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay is the last representable millisecond of t's UTC calendar day.
func EndOfDay(t time.Time) time.Time {
	return NormalizeDate(t).Add(24*time.Hour - time.Millisecond)
}

func Precedes(a, b time.Time) bool { return a.Before(b) }

// WithinInclusive reports lo <= x <= hi.
func WithinInclusive(x, lo, hi time.Time) bool {
	return !x.Before(lo) && !x.After(hi)
}

// ParseDay accepts YYYY-MM-DD or RFC 3339 and returns the normalized UTC day.
func ParseDay(s string) (time.Time, error) {
	if t, err := time.Parse(DayLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return NormalizeDate(t), nil
}

// LongDate renders a day the way notification texts show it, e.g. "Monday, June 10, 2024".
func LongDate(t time.Time) string {
	return t.UTC().Format(longLayout)
}
