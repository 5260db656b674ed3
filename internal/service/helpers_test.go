package service

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/matchday-pool/internal/db"
	"github.com/AdamBeresnev/matchday-pool/internal/pool"
	"github.com/AdamBeresnev/matchday-pool/internal/store"
	users "github.com/AdamBeresnev/matchday-pool/internal/user"
	"github.com/google/uuid"
	"github.com/itbasis/go-clock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// Saturday 08:00 UTC. With the default offset predictions for a matchday starting then close
// on Friday at 20:00.
var firstKickoff = time.Date(2025, time.September, 13, 8, 0, 0, 0, time.UTC)

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

type testServices struct {
	db           *sqlx.DB
	clock        *clock.Mock
	matchStore   *store.MatchStore
	pointsStore  *store.PointsStore
	predictions  *PredictionService
	matches      *MatchService
	leaderboard  *LeaderboardService
	competitions *CompetitionService
	users        *UserService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	database := setupTestDB(t)
	mock := clock.NewMock()
	mock.Set(firstKickoff.Add(-48 * time.Hour))

	policy := pool.NewDeadlinePolicy(pool.DefaultDeadlineOffset)
	matchStore := store.NewMatchStore(database)
	pointsStore := store.NewPointsStore(database)
	competitionStore := store.NewCompetitionStore(database)

	leaderboard := NewLeaderboardService(pointsStore, competitionStore, 16, time.Hour)
	predictions := NewPredictionService(database, matchStore, store.NewPredictionStore(database), pointsStore, leaderboard, policy, mock)

	return &testServices{
		db:           database,
		clock:        mock,
		matchStore:   matchStore,
		pointsStore:  pointsStore,
		predictions:  predictions,
		matches:      NewMatchService(database, matchStore, predictions, policy, mock),
		leaderboard:  leaderboard,
		competitions: NewCompetitionService(database, competitionStore, leaderboard),
		users:        NewUserService(database, store.NewUserStore(database)),
	}
}

func (s *testServices) createUser(t *testing.T, name string) *users.User {
	t.Helper()

	user := &users.User{ID: uuid.New(), Email: name + "@example.com", Username: name}
	require.NoError(t, store.NewUserStore(s.db).CreateUser(context.Background(), user))
	return user
}

func (s *testServices) schedule(t *testing.T, matchday int, home, away string, kickoff time.Time) *pool.Match {
	t.Helper()

	match, err := s.matches.Schedule(context.Background(), ScheduleMatchRequest{
		HomeTeam:    home,
		AwayTeam:    away,
		Matchday:    matchday,
		KickoffTime: kickoff,
	})
	require.NoError(t, err)
	return match
}

func (s *testServices) recordResult(t *testing.T, matchID uuid.UUID, home, away int) {
	t.Helper()

	_, err := s.matches.RecordResult(context.Background(), RecordResultRequest{
		MatchID:   matchID,
		HomeScore: &home,
		AwayScore: &away,
	})
	require.NoError(t, err)
}

func predict(matchID uuid.UUID, home, away int) PredictionInput {
	return PredictionInput{MatchID: matchID, HomeScore: &home, AwayScore: &away}
}
