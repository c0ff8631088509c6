package util

import (
	"strings"
	"time"
)

// ISODateLayout is the wire format of every calendar date in the planner.
const ISODateLayout = "2006-01-02"

// Noon returns 12:00 UTC on t's calendar date, as observed in t's own
// location. Calendar arithmetic is done on these values so that a timezone
// offset or a DST switch can never move a date across midnight.
func Noon(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

// Date returns noon UTC of the given calendar date. Out-of-range month and
// day values are normalised the way time.Date does.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

// ParseISODate parses a YYYY-MM-DD string into noon UTC of that date.
func ParseISODate(s string) (time.Time, error) {
	t, err := time.Parse(ISODateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return Noon(t), nil
}

// FormatISODate formats t's calendar date as YYYY-MM-DD.
func FormatISODate(t time.Time) string {
	return t.Format(ISODateLayout)
}

// AddDays moves a calendar date by n days.
func AddDays(t time.Time, n int) time.Time {
	return Noon(t).AddDate(0, 0, n)
}

// SameDate reports whether a and b fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
