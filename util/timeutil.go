package util

import "time"

// Returns the input date at midnight
func RoundDateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Returns the calendar day of t in its own location as "2006-01-02"
func DayKey(t time.Time) string {
	return t.Format(time.DateOnly)
}
