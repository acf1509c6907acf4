package utils

import "time"

// DayLayout is the canonical storage format for UTC day buckets.
const DayLayout = "2006-01-02"

// DayUTC truncates t to UTC midnight. All streak and check-in day-bucket
// math goes through this helper so local time never leaks into storage.
func DayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DayString formats t as its UTC day bucket (YYYY-MM-DD).
func DayString(t time.Time) string {
	return DayUTC(t).Format(DayLayout)
}

// ParseDay parses a YYYY-MM-DD day bucket back into a UTC midnight time.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, s, time.UTC)
}

// DaysBetween returns the whole number of UTC days from a to b
// (positive when b is after a).
func DaysBetween(a, b time.Time) int {
	return int(DayUTC(b).Sub(DayUTC(a)) / (24 * time.Hour))
}
