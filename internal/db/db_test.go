package db_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyplanner/planner/internal/assets"
	"github.com/studyplanner/planner/internal/db"
	"github.com/studyplanner/planner/internal/testutil"
)

func TestForeignKeyCascadeDelete(t *testing.T) {
	database := testutil.SetupTestDB(t)

	var foreignKeysEnabled int
	require.NoError(t, database.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeysEnabled))
	assert.Equal(t, 1, foreignKeysEnabled)

	_, err := database.Exec("INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?)", "aisha", "hash", "student")
	require.NoError(t, err)
	_, err = database.Exec("INSERT INTO books (user_id, title, page_from, page_to, duration) VALUES (1, 'Juz Amma', 1, 40, 4)")
	require.NoError(t, err)
	_, err = database.Exec("INSERT INTO schedule_blocks (user_id, book_id, date_gregorian, page_start, page_end, day_number) VALUES (1, 1, '2024-03-11', 1, 10, 1)")
	require.NoError(t, err)
	_, err = database.Exec("INSERT INTO sessions (token, user_id, expiry) VALUES ('t', 1, datetime('now', '+1 day'))")
	require.NoError(t, err)

	_, err = database.Exec("DELETE FROM users WHERE id = 1")
	require.NoError(t, err)

	for _, table := range []string{"books", "schedule_blocks", "sessions"} {
		var count int
		require.NoError(t, database.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&count))
		assert.Zero(t, count, table)
	}
}

func TestForeignKeyRejectsUnknownBook(t *testing.T) {
	database := testutil.SetupTestDB(t)

	_, err := database.Exec("INSERT INTO users (username, password_hash) VALUES ('omar', 'hash')")
	require.NoError(t, err)
	_, err = database.Exec("INSERT INTO schedule_blocks (user_id, book_id, date_gregorian, page_start, page_end) VALUES (1, 42, '2024-03-11', 1, 10)")
	assert.Error(t, err)
}

func TestInitDB_FileAndMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.db")

	database, err := db.InitDB(path)
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, db.RunMigrations(database, assets.MigrationsFS))
	require.NoError(t, db.RunMigrations(database, assets.MigrationsFS))

	var name string
	require.NoError(t, database.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='schedule_blocks'").Scan(&name))
	assert.Equal(t, "schedule_blocks", name)
}
