package store

import (
	"context"

	"github.com/AdamBeresnev/matchday-pool/internal/pool"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	// The WHERE on the update skips rewriting an unchanged total, so RowsAffected tells
	// the caller whether anything moved.
	upsertUserPointsQuery = `
		INSERT INTO user_points (user_id, matchday, total_points)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, matchday) DO UPDATE SET
			total_points = excluded.total_points,
			updated_at = CURRENT_TIMESTAMP
		WHERE user_points.total_points <> excluded.total_points
	`
	leaderboardQuery = `
		SELECT u.id AS user_id, u.username AS username, COALESCE(SUM(p.total_points), 0) AS total_points
		FROM user_points p
		JOIN users u ON u.id = p.user_id
		WHERE (? IS NULL OR p.matchday = ?)
		GROUP BY u.id, u.username
		ORDER BY total_points DESC, u.username ASC
	`
	competitionLeaderboardQuery = `
		SELECT u.id AS user_id, u.username AS username, COALESCE(SUM(p.total_points), 0) AS total_points
		FROM competition_members m
		JOIN users u ON u.id = m.user_id
		LEFT JOIN user_points p ON p.user_id = m.user_id AND (? IS NULL OR p.matchday = ?)
		WHERE m.competition_id = ?
		GROUP BY u.id, u.username
		ORDER BY total_points DESC, u.username ASC
	`
)

type PointsStore struct {
	db *sqlx.DB
}

func NewPointsStore(db *sqlx.DB) *PointsStore {
	return &PointsStore{db: db}
}

// UpsertUserPoints stores a user's total for a matchday and reports whether it changed.
func (s *PointsStore) UpsertUserPoints(ctx context.Context, userID uuid.UUID, matchday int, total pool.Points) (bool, error) {
	res, err := s.db.ExecContext(ctx, upsertUserPointsQuery, userID, matchday, total)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *PointsStore) GetUserPoints(ctx context.Context, userID uuid.UUID, matchday int) (*pool.UserPoints, error) {
	var points pool.UserPoints
	err := s.db.GetContext(ctx, &points, "SELECT * FROM user_points WHERE user_id = ? AND matchday = ?", userID, matchday)
	if err != nil {
		return nil, err
	}
	return &points, nil
}

// Leaderboard sums stored totals per user, over all matchdays when matchday is nil.
func (s *PointsStore) Leaderboard(ctx context.Context, matchday *int) ([]pool.LeaderboardRow, error) {
	var rows []pool.LeaderboardRow
	err := s.db.SelectContext(ctx, &rows, leaderboardQuery, matchday, matchday)
	return rows, err
}

// CompetitionLeaderboard lists every member of a competition, including members without points.
func (s *PointsStore) CompetitionLeaderboard(ctx context.Context, competitionID uuid.UUID, matchday *int) ([]pool.LeaderboardRow, error) {
	var rows []pool.LeaderboardRow
	err := s.db.SelectContext(ctx, &rows, competitionLeaderboardQuery, matchday, matchday, competitionID)
	return rows, err
}
