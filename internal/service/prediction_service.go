package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/matchday-pool/internal/logger"
	"github.com/AdamBeresnev/matchday-pool/internal/metrics"
	"github.com/AdamBeresnev/matchday-pool/internal/pool"
	"github.com/AdamBeresnev/matchday-pool/internal/store"
	"github.com/AdamBeresnev/matchday-pool/internal/validation"
	"github.com/google/uuid"
	"github.com/itbasis/go-clock"
	"github.com/jmoiron/sqlx"
)

type PredictionInput struct {
	MatchID   uuid.UUID `json:"matchId" validate:"required"`
	HomeScore *int      `json:"homeScore" validate:"required,gte=0"`
	AwayScore *int      `json:"awayScore" validate:"required,gte=0"`
}

type SubmitRequest struct {
	Matchday    int               `json:"matchday" validate:"gt=0"`
	Predictions []PredictionInput `json:"predictions" validate:"required,min=1,unique=MatchID,dive"`
}

type PredictionService struct {
	db          *sqlx.DB
	matches     *store.MatchStore
	predictions *store.PredictionStore
	points      *store.PointsStore
	leaderboard *LeaderboardService
	policy      pool.DeadlinePolicy
	clock       clock.Clock
}

func NewPredictionService(
	db *sqlx.DB,
	matches *store.MatchStore,
	predictions *store.PredictionStore,
	points *store.PointsStore,
	leaderboard *LeaderboardService,
	policy pool.DeadlinePolicy,
	clock clock.Clock,
) *PredictionService {
	return &PredictionService{
		db:          db,
		matches:     matches,
		predictions: predictions,
		points:      points,
		leaderboard: leaderboard,
		policy:      policy,
		clock:       clock,
	}
}

// Submit stores a user's predictions for one matchday. The whole batch is rejected when any
// prediction is invalid or editing has closed, otherwise every prediction is upserted in a
// single transaction.
func (s *PredictionService) Submit(ctx context.Context, userID uuid.UUID, req SubmitRequest) (*pool.MatchdaySummary, error) {
	log := logger.FromContext(ctx)

	if err := validation.Struct(req); err != nil {
		metrics.PredictionsRejected.WithLabelValues(metrics.ReasonInvalid).Inc()
		return nil, err
	}

	// The gate is evaluated on what the transaction reads, and checked again right before
	// the commit.
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	matches, err := s.matches.GetMatchesByMatchdayTx(ctx, tx, req.Matchday)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches: %w", err)
	}
	if len(matches) == 0 {
		metrics.PredictionsRejected.WithLabelValues(metrics.ReasonUnknownMatch).Inc()
		return nil, fmt.Errorf("matchday %d: %w", req.Matchday, pool.ErrNoMatches)
	}

	inMatchday := make(map[uuid.UUID]struct{}, len(matches))
	for _, m := range matches {
		inMatchday[m.ID] = struct{}{}
	}

	predictions := make([]pool.Prediction, 0, len(req.Predictions))
	for _, in := range req.Predictions {
		if _, ok := inMatchday[in.MatchID]; !ok {
			metrics.PredictionsRejected.WithLabelValues(metrics.ReasonUnknownMatch).Inc()
			return nil, fmt.Errorf("match %s: %w", in.MatchID, pool.ErrUnknownMatch)
		}
		predictions = append(predictions, pool.Prediction{
			UserID:        userID,
			MatchID:       in.MatchID,
			Matchday:      req.Matchday,
			PredictedHome: *in.HomeScore,
			PredictedAway: *in.AwayScore,
		})
	}

	results, err := s.matches.GetResultsByMatchdayTx(ctx, tx, req.Matchday)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}
	if err := s.checkEditable(ctx, userID, req.Matchday, matches, results); err != nil {
		return nil, err
	}

	if err := s.predictions.UpsertPredictions(ctx, tx, predictions); err != nil {
		return nil, fmt.Errorf("failed to save predictions: %w", err)
	}

	if err := s.checkEditable(ctx, userID, req.Matchday, matches, results); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	metrics.PredictionsSaved.Add(float64(len(predictions)))
	log.Info("predictions saved", "user_id", userID, "matchday", req.Matchday, "count", len(predictions))

	return s.Matchday(ctx, userID, req.Matchday)
}

// checkEditable applies the deadline and results gate at the current clock time.
func (s *PredictionService) checkEditable(ctx context.Context, userID uuid.UUID, matchday int, matches []pool.Match, results []pool.Result) error {
	passed, err := s.policy.Passed(matches, s.clock.Now())
	if err != nil {
		return err
	}
	gate := pool.MatchdaySummary{
		DeadlinePassed:      passed,
		AllResultsAvailable: pool.AllResultsAvailable(matches, results),
	}
	if err := gate.CheckEditable(); err != nil {
		reason := metrics.ReasonDeadlinePassed
		if errors.Is(err, pool.ErrResultsAvailable) {
			reason = metrics.ReasonResultsAvailable
		}
		metrics.PredictionsRejected.WithLabelValues(reason).Inc()
		logger.FromContext(ctx).Info("prediction rejected", "user_id", userID, "matchday", matchday, "reason", reason)
		return fmt.Errorf("matchday %d: %w", matchday, err)
	}
	return nil
}

// Matchday aggregates a user's predictions for a matchday and stores the resulting total.
func (s *PredictionService) Matchday(ctx context.Context, userID uuid.UUID, matchday int) (*pool.MatchdaySummary, error) {
	matches, err := s.matches.GetMatchesByMatchday(ctx, matchday)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches: %w", err)
	}
	results, err := s.matches.GetResultsByMatchday(ctx, matchday)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}
	predictions, err := s.predictions.GetPredictions(ctx, userID, matchday)
	if err != nil {
		return nil, fmt.Errorf("failed to load predictions: %w", err)
	}

	summary, err := s.policy.Aggregate(predictions, results, matches, s.clock.Now())
	if err != nil {
		return nil, err
	}
	summary.Matchday = matchday

	if len(predictions) > 0 {
		if err := s.storeTotal(ctx, userID, matchday, summary.TotalPoints); err != nil {
			return nil, err
		}
	}

	return &summary, nil
}

// RecalculateMatchday recomputes the stored total of every user with predictions for the
// matchday. Called after a result is recorded or corrected.
func (s *PredictionService) RecalculateMatchday(ctx context.Context, matchday int) error {
	matches, err := s.matches.GetMatchesByMatchday(ctx, matchday)
	if err != nil {
		return fmt.Errorf("failed to load matches: %w", err)
	}
	results, err := s.matches.GetResultsByMatchday(ctx, matchday)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}
	all, err := s.predictions.GetMatchdayPredictions(ctx, matchday)
	if err != nil {
		return fmt.Errorf("failed to load predictions: %w", err)
	}

	byUser := make(map[uuid.UUID][]pool.Prediction)
	for _, p := range all {
		byUser[p.UserID] = append(byUser[p.UserID], p)
	}

	now := s.clock.Now()
	for userID, predictions := range byUser {
		summary, err := s.policy.Aggregate(predictions, results, matches, now)
		if err != nil {
			return fmt.Errorf("user %s: %w", userID, err)
		}
		if err := s.storeTotal(ctx, userID, matchday, summary.TotalPoints); err != nil {
			return err
		}
	}

	logger.FromContext(ctx).Info("matchday recalculated", "matchday", matchday, "users", len(byUser))
	return nil
}

func (s *PredictionService) storeTotal(ctx context.Context, userID uuid.UUID, matchday int, total pool.Points) error {
	changed, err := s.points.UpsertUserPoints(ctx, userID, matchday, total)
	if err != nil {
		return fmt.Errorf("failed to store points: %w", err)
	}
	if changed && s.leaderboard != nil {
		s.leaderboard.Invalidate()
	}
	return nil
}
