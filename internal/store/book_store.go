package store

import (
	"database/sql"
	"strings"

	"github.com/studyplanner/planner/internal/errors"
	"github.com/studyplanner/planner/internal/models"
	"github.com/studyplanner/planner/internal/util"
)

const bookQuery = `
	SELECT b.id, b.user_id, b.title, b.page_from, b.page_to, b.duration, b.tag_id, b.created_at,
	       t.id, t.name, t.color, t.icon, t.category, t.is_block_only
	FROM books b
	LEFT JOIN tags t ON t.id = b.tag_id
`

// CreateBook stores a new book for userID and returns it with its ID, total
// pages and tag filled in.
func (s *Store) CreateBook(userID int64, book models.Book) (*models.Book, error) {
	book.Title = strings.TrimSpace(book.Title)
	if book.Title == "" {
		return nil, errors.Validation("title is required")
	}
	if book.PageFrom < 1 || book.PageTo < book.PageFrom {
		return nil, errors.Validation("page range must satisfy 1 <= pageFrom <= pageTo")
	}
	if book.Duration < 1 {
		return nil, errors.Validation("duration must be at least one day")
	}
	if book.TagID != nil {
		tag, err := s.GetTagByID(*book.TagID)
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				return nil, errors.Validation("unknown tag")
			}
			return nil, err
		}
		if tag.IsBlockOnly {
			return nil, errors.Validation("tag " + tag.Name + " can only be set on single sessions")
		}
	}

	res, err := s.db.Exec(
		"INSERT INTO books (user_id, title, page_from, page_to, duration, tag_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		userID, book.Title, book.PageFrom, book.PageTo, book.Duration, nullableID(book.TagID), now(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, errors.Validation("unknown tag")
		}
		return nil, err
	}
	id, _ := res.LastInsertId()
	return s.GetBook(userID, id)
}

// ListBooks returns the user's books sorted naturally by title.
func (s *Store) ListBooks(userID int64) ([]*models.Book, error) {
	rows, err := s.db.Query(bookQuery+" WHERE b.user_id = ?", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []*models.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	util.SortByNaturalKey(books, func(b *models.Book) string { return b.Title })
	return books, nil
}

// GetBook returns one of the user's books.
func (s *Store) GetBook(userID, id int64) (*models.Book, error) {
	book, err := scanBook(s.db.QueryRow(bookQuery+" WHERE b.user_id = ? AND b.id = ?", userID, id))
	if err != nil {
		return nil, notFound(err, "book")
	}
	return book, nil
}

// DeleteBook removes one of the user's books together with its blocks.
func (s *Store) DeleteBook(userID, id int64) error {
	res, err := s.db.Exec("DELETE FROM books WHERE user_id = ? AND id = ?", userID, id)
	if err != nil {
		return err
	}
	return expectAffected(res, "book")
}

func scanBook(row rowScanner) (*models.Book, error) {
	var (
		book                        models.Book
		tagID, joinedID             sql.NullInt64
		name, color, icon, category sql.NullString
		isBlockOnly                 sql.NullBool
	)
	err := row.Scan(
		&book.ID, &book.UserID, &book.Title, &book.PageFrom, &book.PageTo, &book.Duration, &tagID, &book.CreatedAt,
		&joinedID, &name, &color, &icon, &category, &isBlockOnly,
	)
	if err != nil {
		return nil, err
	}

	book.TotalPages = models.CountPages(book.PageFrom, book.PageTo)
	book.TagID = idPtr(tagID)
	if joinedID.Valid {
		book.Tag = &models.Tag{
			ID:          joinedID.Int64,
			Name:        name.String,
			Color:       color.String,
			Icon:        icon.String,
			Category:    category.String,
			IsBlockOnly: isBlockOnly.Bool,
		}
	}
	return &book, nil
}
