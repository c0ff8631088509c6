package store

import (
	"database/sql"

	"github.com/studyplanner/planner/internal/errors"
	"github.com/studyplanner/planner/internal/hijri"
	"github.com/studyplanner/planner/internal/models"
)

const blockQuery = `
	SELECT sb.id, sb.book_id, b.title, sb.date_gregorian, sb.hijri_year, sb.hijri_month, sb.hijri_day,
	       sb.page_start, sb.page_end, sb.day_number, sb.tag_id
	FROM schedule_blocks sb
	JOIN books b ON b.id = sb.book_id
`

// ListBlocks returns all of the user's scheduled blocks ordered by date. Only
// the tag id is filled in; clients resolve it against the tag list.
func (s *Store) ListBlocks(userID int64) ([]*models.ScheduledBlock, error) {
	rows, err := s.db.Query(blockQuery+" WHERE sb.user_id = ? ORDER BY sb.date_gregorian, sb.book_id, sb.page_start", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blocks := []*models.ScheduledBlock{}
	for rows.Next() {
		block, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, rows.Err()
}

// GetBlock returns one of the user's blocks.
func (s *Store) GetBlock(userID, id int64) (*models.ScheduledBlock, error) {
	block, err := scanBlock(s.db.QueryRow(blockQuery+" WHERE sb.user_id = ? AND sb.id = ?", userID, id))
	if err != nil {
		return nil, notFound(err, "block")
	}
	return block, nil
}

// ReplaceBookBlocks atomically swaps the book's existing blocks for blocks and
// returns the stored rows with their new IDs.
func (s *Store) ReplaceBookBlocks(userID, bookID int64, blocks []models.ScheduledBlock) ([]*models.ScheduledBlock, error) {
	if _, err := s.GetBook(userID, bookID); err != nil {
		return nil, err
	}

	err := s.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM schedule_blocks WHERE user_id = ? AND book_id = ?", userID, bookID); err != nil {
			return err
		}

		stmt, err := tx.Prepare(`
			INSERT INTO schedule_blocks
				(user_id, book_id, date_gregorian, hijri_year, hijri_month, hijri_day, page_start, page_end, day_number, tag_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, b := range blocks {
			if b.BookID != bookID {
				return errors.InvariantViolationf("block for book %d in schedule of book %d", b.BookID, bookID)
			}
			hy, hm, hd := hijriColumns(b.DateHijri)
			if _, err := stmt.Exec(userID, bookID, b.DateGregorian, hy, hm, hd, b.PageStart, b.PageEnd, b.DayNumber, nullableID(b.TagID)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(blockQuery+" WHERE sb.user_id = ? AND sb.book_id = ? ORDER BY sb.day_number, sb.id", userID, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stored := []*models.ScheduledBlock{}
	for rows.Next() {
		block, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		stored = append(stored, block)
	}
	return stored, rows.Err()
}

// UpdateBlock writes a block's date, Hijri date and own tag in one
// statement, so a bad tag leaves the date untouched too.
func (s *Store) UpdateBlock(userID int64, b models.ScheduledBlock) error {
	hy, hm, hd := hijriColumns(b.DateHijri)
	res, err := s.db.Exec(
		"UPDATE schedule_blocks SET date_gregorian = ?, hijri_year = ?, hijri_month = ?, hijri_day = ?, tag_id = ? WHERE user_id = ? AND id = ?",
		b.DateGregorian, hy, hm, hd, nullableID(b.TagID), userID, b.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return errors.Validation("unknown tag")
		}
		return err
	}
	return expectAffected(res, "block")
}

// UpdateBlockTag sets or clears a block's own tag.
func (s *Store) UpdateBlockTag(userID, id int64, tagID *int64) error {
	res, err := s.db.Exec("UPDATE schedule_blocks SET tag_id = ? WHERE user_id = ? AND id = ?", nullableID(tagID), userID, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return errors.Validation("unknown tag")
		}
		return err
	}
	return expectAffected(res, "block")
}

// ClearBlocks removes all of the user's blocks and returns how many there were.
func (s *Store) ClearBlocks(userID int64) (int64, error) {
	res, err := s.db.Exec("DELETE FROM schedule_blocks WHERE user_id = ?", userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func hijriColumns(h *models.HijriDate) (sql.NullInt64, sql.NullInt64, sql.NullInt64) {
	if !h.Complete() {
		return sql.NullInt64{}, sql.NullInt64{}, sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(h.Year), Valid: true},
		sql.NullInt64{Int64: int64(h.Month), Valid: true},
		sql.NullInt64{Int64: int64(h.Day), Valid: true}
}

func scanBlock(row rowScanner) (*models.ScheduledBlock, error) {
	var (
		block      models.ScheduledBlock
		hy, hm, hd sql.NullInt64
		tagID      sql.NullInt64
	)
	err := row.Scan(
		&block.ID, &block.BookID, &block.BookTitle, &block.DateGregorian, &hy, &hm, &hd,
		&block.PageStart, &block.PageEnd, &block.DayNumber, &tagID,
	)
	if err != nil {
		return nil, err
	}

	block.TagID = idPtr(tagID)
	if hy.Valid && hm.Valid && hd.Valid {
		block.DateHijri = &models.HijriDate{
			Year:      int(hy.Int64),
			Month:     int(hm.Int64),
			Day:       int(hd.Int64),
			MonthName: hijri.MonthName(int(hm.Int64)),
		}
	}
	return &block, nil
}
