package store

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/matchday-pool/internal/db"
	"github.com/AdamBeresnev/matchday-pool/internal/pool"
	users "github.com/AdamBeresnev/matchday-pool/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

var kickoffBase = time.Date(2025, time.September, 13, 14, 30, 0, 0, time.UTC)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.OpenMemory()
	require.NoError(t, err, "Failed to connect to in-memory DB")
	t.Cleanup(func() { database.Close() })

	err = db.RunMigrations(database.DB, "file://../../migrations")
	require.NoError(t, err, "Failed to apply migrations")

	return database
}

func createTestUser(t *testing.T, database *sqlx.DB, name string) *users.User {
	t.Helper()

	user := &users.User{
		ID:       uuid.New(),
		Email:    name + "@example.com",
		Username: name,
	}
	require.NoError(t, NewUserStore(database).CreateUser(context.Background(), user))
	return user
}

func createTestMatch(t *testing.T, database *sqlx.DB, matchday int, kickoff time.Time) pool.Match {
	t.Helper()

	match := pool.Match{
		ID:          uuid.New(),
		HomeTeam:    "Club Brugge",
		AwayTeam:    "Anderlecht",
		Matchday:    matchday,
		KickoffTime: kickoff,
	}
	require.NoError(t, NewMatchStore(database).CreateMatch(context.Background(), &match))
	return match
}
