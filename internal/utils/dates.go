package utils

import (
	"fmt"
	"time"
)

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"

// Clock returns the current time
type Clock func() time.Time

// FixedClock returns a clock frozen at t
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// Day strips the time of day, keeping the wall-clock date in UTC
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Date builds a calendar date in UTC
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// DaysBetween returns the number of whole days from a to b (negative when b is before a)
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// MonthStart returns the first day of t's month
func MonthStart(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), 1)
}

// MonthEnd returns the last day of t's month
func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, -1)
}

// DaysInMonth returns the number of days in the given month
func DaysInMonth(year int, month time.Month) int {
	return MonthEnd(Date(year, month, 1)).Day()
}

// SameMonth reports whether a and b share year and month
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// DayInMonth returns the given day of t's month, clamped to the month's last day
func DayInMonth(t time.Time, day int) time.Time {
	if last := DaysInMonth(t.Year(), t.Month()); day > last {
		day = last
	}
	return Date(t.Year(), t.Month(), day)
}
