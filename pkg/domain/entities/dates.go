package entities

import "time"

// Day truncates a timestamp to its calendar date (UTC midnight).
// All date arithmetic in this package operates on a single consistent
// calendar-date domain with no timezone normalization.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from a to b.
// Negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}
