package util

import "time"

// IsWeekday reports whether t falls on Monday-Friday in UTC.
func IsWeekday(t time.Time) bool {
	switch t.UTC().Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// MinuteOfDayUTC returns minutes elapsed since 00:00 UTC.
func MinuteOfDayUTC(t time.Time) int {
	u := t.UTC()
	return u.Hour()*60 + u.Minute()
}
