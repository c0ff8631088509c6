package models

import "time"

// CalendarDay is one cell of a month grid.
type CalendarDay struct {
	GregorianDate  time.Time  `json:"gregorianDate"`
	Date           string     `json:"date"` // YYYY-MM-DD of GregorianDate
	HijriDate      *HijriDate `json:"hijriDate"`
	IsCurrentMonth bool       `json:"isCurrentMonth"`
}
