package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithPragmas(t *testing.T) {
	assert.Equal(t, "pool.db?_foreign_keys=on&_busy_timeout=5000", withPragmas("pool.db"))
	assert.Equal(t, "pool.db?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000", withPragmas("pool.db?_journal_mode=WAL"))
}

func TestOpenAndMigrate(t *testing.T) {
	database, err := Open(filepath.Join(t.TempDir(), "pool.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, RunMigrations(database.DB, "file://../../migrations"))
	// Running again is a no-op
	require.NoError(t, RunMigrations(database.DB, "file://../../migrations"))

	var foreignKeys int
	require.NoError(t, database.Get(&foreignKeys, "PRAGMA foreign_keys"))
	assert.Equal(t, 1, foreignKeys)

	var tables []string
	require.NoError(t, database.Select(&tables, "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"))
	assert.Subset(t, tables, []string{"competition_members", "competitions", "matches", "predictions", "results", "sessions", "user_points", "users"})
}

func TestOpenMemory_ForeignKeys(t *testing.T) {
	database, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, RunMigrations(database.DB, "file://../../migrations"))

	_, err = database.Exec("INSERT INTO results (match_id, home_score, away_score) VALUES ('missing', 1, 0)")
	assert.Error(t, err, "results must reference a match")
}
