package main

import (
	"github.com/AdamBeresnev/matchday-pool/internal/config"
	"github.com/AdamBeresnev/matchday-pool/internal/pool"
	"github.com/AdamBeresnev/matchday-pool/internal/service"
	"github.com/AdamBeresnev/matchday-pool/internal/store"
	"github.com/alexedwards/scs/v2"
	"github.com/itbasis/go-clock"
	"github.com/jmoiron/sqlx"
)

type application struct {
	cfg            *config.Config
	sessionManager *scs.SessionManager
	providers      []string

	userStore    *store.UserStore
	users        *service.UserService
	matches      *service.MatchService
	predictions  *service.PredictionService
	competitions *service.CompetitionService
	leaderboard  *service.LeaderboardService
}

func newApplication(cfg *config.Config, database *sqlx.DB, sessionManager *scs.SessionManager, clk clock.Clock, providers []string) *application {
	policy := pool.NewDeadlinePolicy(cfg.DeadlineOffset)

	userStore := store.NewUserStore(database)
	matchStore := store.NewMatchStore(database)
	pointsStore := store.NewPointsStore(database)
	competitionStore := store.NewCompetitionStore(database)

	leaderboard := service.NewLeaderboardService(pointsStore, competitionStore, cfg.LeaderboardCacheSize, cfg.LeaderboardCacheTTL)
	predictions := service.NewPredictionService(database, matchStore, store.NewPredictionStore(database), pointsStore, leaderboard, policy, clk)

	return &application{
		cfg:            cfg,
		sessionManager: sessionManager,
		providers:      providers,
		userStore:      userStore,
		users:          service.NewUserService(database, userStore),
		matches:        service.NewMatchService(database, matchStore, predictions, policy, clk),
		predictions:    predictions,
		competitions:   service.NewCompetitionService(database, competitionStore, leaderboard),
		leaderboard:    leaderboard,
	}
}
