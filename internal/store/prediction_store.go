package store

import (
	"context"

	"github.com/AdamBeresnev/matchday-pool/internal/pool"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const upsertPredictionQuery = `
	INSERT INTO predictions (user_id, match_id, matchday, predicted_home, predicted_away)
	VALUES (:user_id, :match_id, :matchday, :predicted_home, :predicted_away)
	ON CONFLICT(user_id, match_id) DO UPDATE SET
		matchday = excluded.matchday,
		predicted_home = excluded.predicted_home,
		predicted_away = excluded.predicted_away,
		updated_at = CURRENT_TIMESTAMP
`

type PredictionStore struct {
	db *sqlx.DB
}

func NewPredictionStore(db *sqlx.DB) *PredictionStore {
	return &PredictionStore{db: db}
}

// UpsertPredictions writes the predictions inside tx. The (user_id, match_id) key keeps one
// row per user and match, a later write for the same pair replaces the earlier one.
func (s *PredictionStore) UpsertPredictions(ctx context.Context, tx *sqlx.Tx, predictions []pool.Prediction) error {
	for i := range predictions {
		if _, err := tx.NamedExecContext(ctx, upsertPredictionQuery, &predictions[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *PredictionStore) GetPredictions(ctx context.Context, userID uuid.UUID, matchday int) ([]pool.Prediction, error) {
	var predictions []pool.Prediction
	err := s.db.SelectContext(ctx, &predictions, "SELECT * FROM predictions WHERE user_id = ? AND matchday = ?", userID, matchday)
	return predictions, err
}

// GetMatchdayPredictions returns every user's predictions for a matchday, used when
// totals have to be recomputed after a result comes in.
func (s *PredictionStore) GetMatchdayPredictions(ctx context.Context, matchday int) ([]pool.Prediction, error) {
	var predictions []pool.Prediction
	err := s.db.SelectContext(ctx, &predictions, "SELECT * FROM predictions WHERE matchday = ? ORDER BY user_id", matchday)
	return predictions, err
}
