// Package store is the planner's data access layer, keeping SQL queries
// separate from business logic.
package store

import (
	"database/sql"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/studyplanner/planner/internal/errors"
)

// DefaultSessionTTL is how long a login session stays valid.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Store provides all functions to interact with the database.
type Store struct {
	db         *sql.DB
	sessionTTL time.Duration
}

// New creates a new Store instance.
func New(db *sql.DB) *Store {
	return &Store{db: db, sessionTTL: DefaultSessionTTL}
}

// SetSessionTTL changes the lifetime of sessions created from now on.
func (s *Store) SetSessionTTL(ttl time.Duration) {
	if ttl > 0 {
		s.sessionTTL = ttl
	}
}

// DB exposes the underlying connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// inTx runs fn in a transaction, committing when fn returns nil.
func (s *Store) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

// isForeignKeyViolation reports whether err is a SQLite FOREIGN KEY failure.
func isForeignKeyViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintForeignKey
}

// notFound maps sql.ErrNoRows to a NotFound error naming what was missing.
func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errors.NotFound(what + " not found")
	}
	return err
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
