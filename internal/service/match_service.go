package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AdamBeresnev/matchday-pool/internal/logger"
	"github.com/AdamBeresnev/matchday-pool/internal/metrics"
	"github.com/AdamBeresnev/matchday-pool/internal/pool"
	"github.com/AdamBeresnev/matchday-pool/internal/store"
	"github.com/AdamBeresnev/matchday-pool/internal/validation"
	"github.com/google/uuid"
	"github.com/itbasis/go-clock"
	"github.com/jmoiron/sqlx"
)

type ScheduleMatchRequest struct {
	HomeTeam    string    `json:"homeTeam" validate:"required,max=64"`
	AwayTeam    string    `json:"awayTeam" validate:"required,max=64,nefield=HomeTeam"`
	Matchday    int       `json:"matchday" validate:"gt=0"`
	KickoffTime time.Time `json:"kickoffTime" validate:"required"`
}

type RecordResultRequest struct {
	MatchID   uuid.UUID `json:"matchId" validate:"required"`
	HomeScore *int      `json:"homeScore" validate:"required,gte=0"`
	AwayScore *int      `json:"awayScore" validate:"required,gte=0"`
}

// MatchdayOverview is the public view of a matchday: its fixtures sorted by kickoff, the
// results known so far and when predictions close.
type MatchdayOverview struct {
	Matchday       int                       `json:"matchday"`
	Matches        []pool.Match              `json:"matches"`
	Results        map[uuid.UUID]pool.Result `json:"results"`
	Deadline       *time.Time                `json:"deadline"`
	DeadlinePassed bool                      `json:"deadlinePassed"`
}

type MatchService struct {
	db          *sqlx.DB
	store       *store.MatchStore
	predictions *PredictionService
	policy      pool.DeadlinePolicy
	clock       clock.Clock
}

func NewMatchService(db *sqlx.DB, store *store.MatchStore, predictions *PredictionService, policy pool.DeadlinePolicy, clock clock.Clock) *MatchService {
	return &MatchService{db: db, store: store, predictions: predictions, policy: policy, clock: clock}
}

func (s *MatchService) Schedule(ctx context.Context, req ScheduleMatchRequest) (*pool.Match, error) {
	req.HomeTeam = strings.TrimSpace(req.HomeTeam)
	req.AwayTeam = strings.TrimSpace(req.AwayTeam)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	match := &pool.Match{
		ID:          uuid.New(),
		HomeTeam:    req.HomeTeam,
		AwayTeam:    req.AwayTeam,
		Matchday:    req.Matchday,
		KickoffTime: req.KickoffTime.UTC(),
	}
	if err := s.store.CreateMatch(ctx, match); err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	logger.FromContext(ctx).Info("match scheduled", "match_id", match.ID, "matchday", match.Matchday)
	return match, nil
}

// RecordResult stores or corrects the final score of a match and recomputes the totals of
// everyone who predicted that matchday.
func (s *MatchService) RecordResult(ctx context.Context, req RecordResultRequest) (*pool.Result, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	score := pool.Scoreline{Home: *req.HomeScore, Away: *req.AwayScore}
	if err := score.Validate(); err != nil {
		return nil, err
	}

	match, err := s.store.GetMatch(ctx, req.MatchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("match %s: %w", req.MatchID, ErrNotFound)
		}
		return nil, err
	}

	result := &pool.Result{
		MatchID:   match.ID,
		HomeScore: score.Home,
		AwayScore: score.Away,
		Matchday:  &match.Matchday,
	}
	if err := s.store.RecordResult(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to record result: %w", err)
	}
	metrics.ResultsRecorded.Inc()
	logger.FromContext(ctx).Info("result recorded", "match_id", match.ID, "matchday", match.Matchday, "score", score.String())

	if err := s.predictions.RecalculateMatchday(ctx, match.Matchday); err != nil {
		return nil, fmt.Errorf("failed to recalculate matchday %d: %w", match.Matchday, err)
	}

	return s.store.GetResult(ctx, match.ID)
}

func (s *MatchService) Matchday(ctx context.Context, matchday int) (*MatchdayOverview, error) {
	matches, err := s.store.GetMatchesByMatchday(ctx, matchday)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches: %w", err)
	}
	results, err := s.store.GetResultsByMatchday(ctx, matchday)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}

	overview := &MatchdayOverview{
		Matchday: matchday,
		Matches:  matches,
		Results:  make(map[uuid.UUID]pool.Result, len(results)),
	}
	if overview.Matches == nil {
		overview.Matches = []pool.Match{}
	}
	pool.SortByKickoff(overview.Matches)
	for _, r := range results {
		overview.Results[r.MatchID] = r
	}

	deadline, ok, err := s.policy.Deadline(matches)
	if err != nil {
		return nil, err
	}
	if ok {
		overview.Deadline = &deadline
		overview.DeadlinePassed = s.clock.Now().After(deadline)
	}
	return overview, nil
}

func (s *MatchService) Matchdays(ctx context.Context) ([]int, error) {
	matchdays, err := s.store.ListMatchdays(ctx)
	if err != nil {
		return nil, err
	}
	if matchdays == nil {
		matchdays = []int{}
	}
	return matchdays, nil
}
