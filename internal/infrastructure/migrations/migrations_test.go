package migrations

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// TestRunMigrations_FreshDB verifies all migrations apply to an empty
// :memory: database.
func TestRunMigrations_FreshDB(t *testing.T) {
	db, err := sql.Open("sqlite3", "file::memory:")
	require.NoError(t, err, "ncruces driver should open :memory: database")
	defer func() { _ = db.Close() }()

	require.NoError(t, RunMigrations(db))

	for _, table := range []string{"active_sessions", "session_responses", "recent_completed", "meta"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}
}

// TestRunMigrations_Idempotent verifies a second run handles ErrNoChange.
func TestRunMigrations_Idempotent(t *testing.T) {
	db, err := sql.Open("sqlite3", "file::memory:")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, RunMigrations(db))
	require.NoError(t, RunMigrations(db))
}

// TestWithInstance_NilConfig verifies the driver rejects a nil config.
func TestWithInstance_NilConfig(t *testing.T) {
	db, err := sql.Open("sqlite3", "file::memory:")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = WithInstance(db, nil)
	require.ErrorIs(t, err, ErrNilConfig)
}
