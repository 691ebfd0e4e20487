// Package dbtest opens throwaway migrated SQLite databases for tests.
package dbtest

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"pathfinder/pkg/database"
)

// New returns a migrated database in t's temp dir, closed on cleanup.
func New(t testing.TB) *sql.DB {
	t.Helper()

	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// InsertUser adds a bare user row and returns its id.
func InsertUser(t testing.TB, db *sql.DB, id, email string) string {
	t.Helper()

	_, err := db.Exec(`INSERT INTO users (id, email, password_hash) VALUES (?, ?, 'x')`, id, email)
	require.NoError(t, err)
	return id
}
