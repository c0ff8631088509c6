package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/studyplanner/planner/internal/calendar"
	"github.com/studyplanner/planner/internal/errors"
	"github.com/studyplanner/planner/internal/models"
)

type monthRef struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type calendarResponse struct {
	Year       int                  `json:"year"`
	Month      int                  `json:"month"`
	HijriTitle string               `json:"hijriTitle"`
	Weekdays   [7]string            `json:"weekdays"`
	Days       []models.CalendarDay `json:"days"`
	Prev       monthRef             `json:"prev"`
	Next       monthRef             `json:"next"`
}

// handleGetCalendar builds the month grid for ?year=&month=, defaulting to
// the current month. Scheduled blocks supply their stored Hijri dates.
func (s *Server) handleGetCalendar(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())

	var err error
	if v := r.URL.Query().Get("year"); v != "" {
		if year, err = strconv.Atoi(v); err != nil {
			respondWithDomainError(w, r, errors.InvalidDatef("invalid year %q", v))
			return
		}
	}
	if v := r.URL.Query().Get("month"); v != "" {
		if month, err = strconv.Atoi(v); err != nil {
			respondWithDomainError(w, r, errors.InvalidDatef("invalid month %q", v))
			return
		}
	}

	blocks, err := s.store.ListBlocks(getUserFromContext(r).ID)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	known := make([]calendar.KnownDay, 0, len(blocks))
	for _, b := range blocks {
		known = append(known, calendar.KnownDay{Date: b.DateGregorian, Hijri: b.DateHijri})
	}

	days, err := calendar.BuildMonthGrid(year, month, known)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	py, pm := calendar.Shift(year, month, -1)
	ny, nm := calendar.Shift(year, month, 1)
	RespondWithJSON(w, http.StatusOK, calendarResponse{
		Year:       year,
		Month:      month,
		HijriTitle: calendar.HijriTitle(days),
		Weekdays:   calendar.WeekdayNames,
		Days:       days,
		Prev:       monthRef{Year: py, Month: pm},
		Next:       monthRef{Year: ny, Month: nm},
	})
}
