// Package calendar builds the month view: a rectangular grid of Sunday-start
// weeks where every Gregorian cell is annotated with its Hijri date.
package calendar

import (
	"fmt"
	"time"

	"github.com/studyplanner/planner/internal/errors"
	"github.com/studyplanner/planner/internal/hijri"
	"github.com/studyplanner/planner/internal/models"
	"github.com/studyplanner/planner/internal/util"
)

// WeekdayNames are the column headings of the grid, Sunday first.
var WeekdayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// KnownDay is what the grid needs to know about an already scheduled block:
// its date and, when the server persisted one, its Hijri date.
type KnownDay struct {
	Date  string
	Hijri *models.HijriDate
}

// KnownDaysFromBlocks extracts the grid inputs from scheduled blocks.
func KnownDaysFromBlocks(blocks []models.ScheduledBlock) []KnownDay {
	known := make([]KnownDay, 0, len(blocks))
	for _, b := range blocks {
		known = append(known, KnownDay{Date: b.DateGregorian, Hijri: b.DateHijri})
	}
	return known
}

// BuildMonthGrid returns the cells of the Gregorian month year/month expanded
// to complete Sunday-start weeks, in chronological row-major order.
//
// A known block whose date matches a cell and carries a complete Hijri date
// supplies that cell's Hijri date verbatim; every other cell is converted. A
// cell whose conversion fails keeps a nil Hijri date instead of failing the
// whole grid.
func BuildMonthGrid(year, month int, known []KnownDay) ([]models.CalendarDay, error) {
	if month < 1 || month > 12 {
		return nil, errors.InvalidDatef("month %d out of range", month)
	}

	firstOfMonth := util.Date(year, time.Month(month), 1)
	lastOfMonth := firstOfMonth.AddDate(0, 1, -1)

	start := firstOfMonth.AddDate(0, 0, -int(firstOfMonth.Weekday()))
	end := lastOfMonth.AddDate(0, 0, int(time.Saturday-lastOfMonth.Weekday()))

	persisted := make(map[string]*models.HijriDate, len(known))
	for _, k := range known {
		if k.Hijri.Complete() {
			if _, seen := persisted[k.Date]; !seen {
				h := *k.Hijri
				persisted[k.Date] = &h
			}
		}
	}

	days := make([]models.CalendarDay, 0, 42)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := util.FormatISODate(d)
		day := models.CalendarDay{
			GregorianDate:  d,
			Date:           date,
			IsCurrentMonth: d.Month() == time.Month(month) && d.Year() == year,
		}
		if h, ok := persisted[date]; ok {
			day.HijriDate = h
		} else if h, err := hijri.ToHijri(d); err == nil {
			day.HijriDate = &h
		}
		days = append(days, day)
	}
	return days, nil
}

// Weeks splits a grid into rows of seven cells.
func Weeks(days []models.CalendarDay) [][]models.CalendarDay {
	weeks := make([][]models.CalendarDay, 0, len(days)/7)
	for i := 0; i+7 <= len(days); i += 7 {
		weeks = append(weeks, days[i:i+7])
	}
	return weeks
}

// Shift moves a year/month pair by delta months.
func Shift(year, month, delta int) (int, int) {
	t := util.Date(year, time.Month(month), 1).AddDate(0, delta, 0)
	return t.Year(), int(t.Month())
}

// HijriTitle returns the heading of a grid such as "Sha'ban - Ramadan 1445 AH",
// spanning the Hijri months touched by the in-month cells.
func HijriTitle(days []models.CalendarDay) string {
	var first, last *models.HijriDate
	for i := range days {
		if !days[i].IsCurrentMonth || days[i].HijriDate == nil {
			continue
		}
		if first == nil {
			first = days[i].HijriDate
		}
		last = days[i].HijriDate
	}
	if first == nil {
		return ""
	}
	switch {
	case first.Year == last.Year && first.Month == last.Month:
		return fmt.Sprintf("%s %d AH", first.MonthName, first.Year)
	case first.Year == last.Year:
		return fmt.Sprintf("%s - %s %d AH", first.MonthName, last.MonthName, last.Year)
	default:
		return fmt.Sprintf("%s %d - %s %d AH", first.MonthName, first.Year, last.MonthName, last.Year)
	}
}

// IsToday reports whether a cell is the given "today".
func IsToday(day models.CalendarDay, now time.Time) bool {
	return util.SameDate(day.GregorianDate, util.Noon(now))
}

// IsPast reports whether a cell lies before the given "today".
func IsPast(day models.CalendarDay, now time.Time) bool {
	return day.GregorianDate.Before(util.Noon(now))
}
