// This file defines the core data structures (models) of the planner:
// books, tags, scheduled blocks and the calendar cells they are drawn on.

package models

import "time"

// Book is a reading assignment registered by a user: a page range to be read
// over a number of days.
type Book struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"-"`
	Title      string    `json:"title"`
	PageFrom   int       `json:"pageFrom"`
	PageTo     int       `json:"pageTo"`
	TotalPages int       `json:"totalPages"`
	Duration   int       `json:"duration"` // days
	TagID      *int64    `json:"tag_id,omitempty"`
	Tag        *Tag      `json:"tag,omitempty"`
	CreatedAt  time.Time `json:"-"`
}

// CountPages returns the number of pages in [from, to], never negative.
func CountPages(from, to int) int {
	if to < from {
		return 0
	}
	return to - from + 1
}
