// Package schedule implements the calendar math behind the public
// availability views: UTC month boundaries and per-day slot counts.
package schedule

import "time"

// DateLayout is the calendar cell key format.
const DateLayout = "2006-01-02"

// FormatDate truncates an instant to its UTC date component. Keys stay
// stable regardless of the viewer's timezone.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// StartOfMonth returns UTC midnight on the 1st of the month containing t.
func StartOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// EndOfMonth returns UTC midnight on the last day of the month containing t.
// Day 0 of the next month handles 28-31 day months and leap years.
func EndOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}

// AddMonths returns the 1st of the month n months away from t; n may be
// negative. time.Date normalizes month overflow in both directions.
func AddMonths(t time.Time, n int) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
}
