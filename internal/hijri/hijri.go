// Package hijri converts between the Gregorian calendar and the civil
// (tabular) Islamic calendar.
//
// All conversions go through the Julian Day Number using exact integer
// arithmetic. The Islamic side is the arithmetical calendar with the civil
// epoch (1 Muharram 1 AH = JDN 1948440 = 19 July 622 proleptic Gregorian) and
// the 30-year leap cycle {2, 5, 7, 10, 13, 16, 18, 21, 24, 26, 29}.
package hijri

import (
	"time"

	"github.com/studyplanner/planner/internal/errors"
	"github.com/studyplanner/planner/internal/models"
	"github.com/studyplanner/planner/internal/util"
)

const (
	// EpochJDN is the Julian Day Number of 1 Muharram 1 AH.
	EpochJDN = 1948440

	maxGregorianYear = 9999
)

var monthNames = [12]string{
	"Muharram",
	"Safar",
	"Rabi' al-Awwal",
	"Rabi' al-Thani",
	"Jumada al-Awwal",
	"Jumada al-Thani",
	"Rajab",
	"Sha'ban",
	"Ramadan",
	"Shawwal",
	"Dhul-Qi'dah",
	"Dhul-Hijjah",
}

// MonthName returns the canonical name of a Hijri month, or "" when month is
// outside [1, 12].
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

// MonthNames returns the twelve month names in calendar order.
func MonthNames() []string {
	names := make([]string, len(monthNames))
	copy(names, monthNames[:])
	return names
}

// IsLeapYear reports whether a Hijri year has 355 days.
func IsLeapYear(year int) bool {
	return mod(14+11*year, 30) < 11
}

// MonthLength returns the number of days in a Hijri month: odd months have 30
// days, even months 29, and Dhul-Hijjah gains a day in leap years.
func MonthLength(year, month int) int {
	if month < 1 || month > 12 {
		return 0
	}
	if month%2 == 1 || (month == 12 && IsLeapYear(year)) {
		return 30
	}
	return 29
}

// ToJDN returns the Julian Day Number of a proleptic Gregorian date.
func ToJDN(year int, month time.Month, day int) int {
	a := (14 - int(month)) / 12
	y := year + 4800 - a
	m := int(month) + 12*a - 3
	return day + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045
}

// FromJDN returns the proleptic Gregorian date of a Julian Day Number.
func FromJDN(jdn int) (year int, month time.Month, day int) {
	a := jdn + 32044
	b := (4*a + 3) / 146097
	c := a - 146097*b/4
	d := (4*c + 3) / 1461
	e := c - 1461*d/4
	m := (5*e + 2) / 153

	day = e - (153*m+2)/5 + 1
	month = time.Month(m + 3 - 12*(m/10))
	year = 100*b + d - 4800 + m/10
	return year, month, day
}

// ToHijri converts the calendar date of t to the civil Hijri calendar. The
// time of day and location of t are ignored: the date is read as written in
// t's own location, so callers should normalise to local noon (util.Noon)
// before deriving t from user input.
func ToHijri(t time.Time) (models.HijriDate, error) {
	if t.IsZero() {
		return models.HijriDate{}, errors.InvalidDate("zero date")
	}
	gy, gm, gd := t.Date()
	if gy > maxGregorianYear {
		return models.HijriDate{}, errors.InvalidDatef("year %d out of range", gy)
	}

	jdn := ToJDN(gy, gm, gd)
	if jdn < EpochJDN {
		return models.HijriDate{}, errors.InvalidDatef("%s precedes the Hijri epoch", util.FormatISODate(t))
	}
	return fromJDN(jdn), nil
}

// ToHijriString parses a YYYY-MM-DD date and converts it.
func ToHijriString(date string) (models.HijriDate, error) {
	t, err := util.ParseISODate(date)
	if err != nil {
		return models.HijriDate{}, errors.InvalidDatef("malformed date %q", date).WithCause(err)
	}
	return ToHijri(t)
}

// ToGregorian converts a civil Hijri date to noon UTC of the matching
// Gregorian date.
func ToGregorian(year, month, day int) (time.Time, error) {
	if year < 1 {
		return time.Time{}, errors.InvalidDatef("hijri year %d out of range", year)
	}
	if month < 1 || month > 12 {
		return time.Time{}, errors.InvalidDatef("hijri month %d out of range", month)
	}
	if day < 1 || day > MonthLength(year, month) {
		return time.Time{}, errors.InvalidDatef("day %d out of range for %s %d", day, MonthName(month), year)
	}

	jdn := (11*year+3)/30 + 354*year + 30*month - (month-1)/2 + day + EpochJDN - 385
	gy, gm, gd := FromJDN(jdn)
	if gy > maxGregorianYear {
		return time.Time{}, errors.InvalidDatef("hijri year %d out of range", year)
	}
	return util.Date(gy, gm, gd), nil
}

// fromJDN converts a Julian Day Number at or after the epoch.
func fromJDN(jdn int) models.HijriDate {
	l := jdn - EpochJDN + 10632
	n := (l - 1) / 10631
	l = l - 10631*n + 354
	j := ((10985-l)/5316)*((50*l)/17719) + (l/5670)*((43*l)/15238)
	l = l - ((30-j)/15)*((17719*j)/50) - (j/16)*((15238*j)/43) + 29
	month := (24 * l) / 709
	day := l - (709*month)/24
	year := 30*n + j - 30

	return models.HijriDate{
		Year:      year,
		Month:     month,
		Day:       day,
		MonthName: MonthName(month),
	}
}

func mod(a, b int) int {
	r := a % b
	if r < 0 {
		r += b
	}
	return r
}
