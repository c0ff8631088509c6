package store

import (
	"database/sql"
	"strings"

	"github.com/studyplanner/planner/internal/errors"
	"github.com/studyplanner/planner/internal/models"
)

// FallbackTagColor is used for a tag created without a color whose name has
// no default.
const FallbackTagColor = "#6B7280"

const tagColumns = "id, name, color, icon, category, is_block_only"

// ListTags returns all tags ordered by name.
func (s *Store) ListTags() ([]*models.Tag, error) {
	rows, err := s.db.Query("SELECT " + tagColumns + " FROM tags ORDER BY name COLLATE NOCASE ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []*models.Tag{}
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// GetTagByID retrieves a single tag by its ID.
func (s *Store) GetTagByID(id int64) (*models.Tag, error) {
	tag, err := scanTag(s.db.QueryRow("SELECT "+tagColumns+" FROM tags WHERE id = ?", id))
	if err != nil {
		return nil, notFound(err, "tag")
	}
	return tag, nil
}

// CreateTag stores a new tag. A missing color is taken from
// models.DefaultTagColors, falling back to FallbackTagColor.
func (s *Store) CreateTag(tag models.Tag) (*models.Tag, error) {
	tag.Name = strings.TrimSpace(tag.Name)
	if tag.Name == "" {
		return nil, errors.Validation("tag name cannot be empty")
	}
	if tag.Color == "" {
		tag.Color = DefaultColorFor(tag.Name)
	}

	res, err := s.db.Exec(
		"INSERT INTO tags (name, color, icon, category, is_block_only) VALUES (?, ?, ?, ?, ?)",
		tag.Name, tag.Color, tag.Icon, tag.Category, tag.IsBlockOnly,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errors.Conflict("tag " + tag.Name + " already exists")
		}
		return nil, err
	}
	tag.ID, _ = res.LastInsertId()
	return &tag, nil
}

// DeleteTag removes a tag. Books and blocks referencing it lose their tag.
func (s *Store) DeleteTag(id int64) error {
	res, err := s.db.Exec("DELETE FROM tags WHERE id = ?", id)
	if err != nil {
		return err
	}
	return expectAffected(res, "tag")
}

// DefaultColorFor returns the default color of a well-known tag name.
func DefaultColorFor(name string) string {
	for known, color := range models.DefaultTagColors {
		if strings.EqualFold(known, strings.TrimSpace(name)) {
			return color
		}
	}
	return FallbackTagColor
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTag(row rowScanner) (*models.Tag, error) {
	var tag models.Tag
	if err := row.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.Icon, &tag.Category, &tag.IsBlockOnly); err != nil {
		return nil, err
	}
	return &tag, nil
}

// nullableID converts an optional id for a nullable column.
func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func idPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	id := n.Int64
	return &id
}
