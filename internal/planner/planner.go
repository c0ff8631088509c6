// Package planner splits a book's page range into daily reading blocks and
// applies the pure edits (move, retag) that blocks undergo afterwards. It
// performs no I/O; the client store and the server both call into it so that
// both sides compute identical ranges.
package planner

import (
	"fmt"
	"sort"
	"time"

	"github.com/studyplanner/planner/internal/errors"
	"github.com/studyplanner/planner/internal/hijri"
	"github.com/studyplanner/planner/internal/models"
	"github.com/studyplanner/planner/internal/util"
)

// PagesPerDay returns ceil(totalPages/duration), or 0 when either is not
// positive.
func PagesPerDay(totalPages, duration int) int {
	if totalPages <= 0 || duration <= 0 {
		return 0
	}
	return (totalPages + duration - 1) / duration
}

// GenerateSessions lays the book out over consecutive days starting at start.
//
// Day d reads [pageFrom + d*ppd, min(pageFrom + d*ppd + ppd - 1, pageTo)].
// When the rounding of ppd leaves trailing days with nothing to read, those
// days are omitted, so fewer than book.Duration blocks can be returned. A
// book with no pages produces no blocks.
func GenerateSessions(book models.Book, start time.Time) ([]models.ScheduledBlock, error) {
	if book.Duration <= 0 {
		return nil, errors.Validation("duration must be at least one day")
	}
	if start.IsZero() {
		return nil, errors.InvalidDate("missing start date")
	}

	total := models.CountPages(book.PageFrom, book.PageTo)
	if total == 0 {
		return nil, nil
	}
	ppd := PagesPerDay(total, book.Duration)
	start = util.Noon(start)

	blocks := make([]models.ScheduledBlock, 0, book.Duration)
	for d := 0; d < book.Duration; d++ {
		pageStart := book.PageFrom + d*ppd
		if pageStart > book.PageTo {
			break
		}
		pageEnd := min(pageStart+ppd-1, book.PageTo)

		date := start.AddDate(0, 0, d)
		h, err := hijri.ToHijri(date)
		if err != nil {
			return nil, err
		}

		blocks = append(blocks, models.ScheduledBlock{
			BookID:        book.ID,
			BookTitle:     book.Title,
			DateGregorian: util.FormatISODate(date),
			DateHijri:     &h,
			PageStart:     pageStart,
			PageEnd:       pageEnd,
			DayNumber:     d + 1,
			TagID:         book.TagID,
		})
	}

	if err := checkTiling(book, blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// checkTiling verifies that blocks lie within the book and cover
// [pageFrom, pageTo] in order with no gap or overlap.
func checkTiling(book models.Book, blocks []models.ScheduledBlock) error {
	next := book.PageFrom
	for _, b := range blocks {
		if b.PageStart < book.PageFrom || b.PageEnd > book.PageTo {
			return errors.InvariantViolationf("block %d-%d outside book pages %d-%d", b.PageStart, b.PageEnd, book.PageFrom, book.PageTo)
		}
		if b.PageEnd < b.PageStart {
			return errors.InvariantViolationf("empty block %d-%d", b.PageStart, b.PageEnd)
		}
		if b.PageStart != next {
			return errors.InvariantViolationf("block starts at page %d, expected %d", b.PageStart, next)
		}
		next = b.PageEnd + 1
	}
	if len(blocks) > 0 && next != book.PageTo+1 {
		return errors.InvariantViolationf("blocks end at page %d, expected %d", next-1, book.PageTo)
	}
	return nil
}

// ReplaceBookSchedule returns existing without any block of bookID, followed
// by generated.
func ReplaceBookSchedule(existing []models.ScheduledBlock, bookID int64, generated []models.ScheduledBlock) []models.ScheduledBlock {
	out := make([]models.ScheduledBlock, 0, len(existing)+len(generated))
	for _, b := range existing {
		if b.BookID != bookID {
			out = append(out, b)
		}
	}
	return append(out, generated...)
}

// RescheduleBlock moves a block to newDate. Only the Gregorian date and the
// Hijri date derived from it change.
func RescheduleBlock(block models.ScheduledBlock, newDate time.Time) (models.ScheduledBlock, error) {
	if newDate.IsZero() {
		return block, errors.InvalidDate("missing target date")
	}
	date := util.FormatISODate(newDate)
	if date == block.DateGregorian {
		return block, nil
	}
	h, err := hijri.ToHijri(util.Noon(newDate))
	if err != nil {
		return block, err
	}
	block.DateGregorian = date
	block.DateHijri = &h
	return block, nil
}

// RetagBlock sets or clears the block's own tag. The resolved Tag and Color
// are dropped because they belong to the previous tag; the store rehydrates
// them on refresh.
func RetagBlock(block models.ScheduledBlock, tagID *int64) models.ScheduledBlock {
	if tagID != nil {
		id := *tagID
		tagID = &id
	}
	block.TagID = tagID
	block.Tag = nil
	block.Color = ""
	return block
}

// VerifyAgainst reports whether blocks, as returned by a server for book
// scheduled at start, carry the same dates and page ranges that
// GenerateSessions computes locally.
func VerifyAgainst(book models.Book, start time.Time, blocks []models.ScheduledBlock) error {
	want, err := GenerateSessions(book, start)
	if err != nil {
		return err
	}

	got := make([]models.ScheduledBlock, 0, len(blocks))
	for _, b := range blocks {
		if b.BookID == book.ID {
			got = append(got, b)
		}
	}
	SortByDate(got)

	if len(got) != len(want) {
		return errors.InvariantViolationf("book %d: got %d blocks, expected %d", book.ID, len(got), len(want))
	}
	for i := range want {
		if key(got[i]) != key(want[i]) {
			return errors.InvariantViolationf("book %d day %d: got %s, expected %s", book.ID, i+1, key(got[i]), key(want[i]))
		}
	}
	return nil
}

// SortByDate orders blocks by date, then by first page.
func SortByDate(blocks []models.ScheduledBlock) {
	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].DateGregorian != blocks[j].DateGregorian {
			return blocks[i].DateGregorian < blocks[j].DateGregorian
		}
		return blocks[i].PageStart < blocks[j].PageStart
	})
}

func key(b models.ScheduledBlock) string {
	return fmt.Sprintf("%s p.%d-%d", b.DateGregorian, b.PageStart, b.PageEnd)
}
