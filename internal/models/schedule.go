package models

// HijriDate is a date in the civil Islamic calendar.
type HijriDate struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"` // 1-12
	Day       int    `json:"day"`
	MonthName string `json:"monthName"`
}

// Complete reports whether every field of the date is populated.
func (h *HijriDate) Complete() bool {
	return h != nil && h.Year >= 1 && h.Month >= 1 && h.Month <= 12 && h.Day >= 1 && h.MonthName != ""
}

// ScheduledBlock is one day's reading assignment (page sub-range) for one book.
type ScheduledBlock struct {
	ID            int64      `json:"id"`
	BookID        int64      `json:"book"`
	BookTitle     string     `json:"book_title"`
	DateGregorian string     `json:"date_gregorian"` // YYYY-MM-DD
	DateHijri     *HijriDate `json:"date_hijri,omitempty"`
	PageStart     int        `json:"page_start"`
	PageEnd       int        `json:"page_end"`
	DayNumber     int        `json:"day_number,omitempty"` // 1-based day of the book's plan
	TagID         *int64     `json:"tag_id,omitempty"`
	Tag           *Tag       `json:"tag,omitempty"`
	Color         string     `json:"color,omitempty"`
}
