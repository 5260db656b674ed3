package store

import (
	"context"

	"github.com/AdamBeresnev/matchday-pool/internal/pool"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type MatchStore struct {
	db *sqlx.DB
}

func NewMatchStore(db *sqlx.DB) *MatchStore {
	return &MatchStore{db: db}
}

func (s *MatchStore) CreateMatch(ctx context.Context, match *pool.Match) error {
	// Stored as UTC so that ordering on the text column follows time order
	match.KickoffTime = match.KickoffTime.UTC()
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO matches (id, home_team, away_team, matchday, kickoff_time)
		VALUES (:id, :home_team, :away_team, :matchday, :kickoff_time)`, match)
	return err
}

// CreateMatches inserts a batch of fixtures inside tx
func (s *MatchStore) CreateMatches(ctx context.Context, tx *sqlx.Tx, matches []pool.Match) error {
	if len(matches) == 0 {
		return nil
	}
	for i := range matches {
		matches[i].KickoffTime = matches[i].KickoffTime.UTC()
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO matches (id, home_team, away_team, matchday, kickoff_time)
		VALUES (:id, :home_team, :away_team, :matchday, :kickoff_time)`, matches)
	return err
}

func (s *MatchStore) GetMatch(ctx context.Context, id uuid.UUID) (*pool.Match, error) {
	var match pool.Match
	err := s.db.GetContext(ctx, &match, "SELECT * FROM matches WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	return &match, nil
}

const matchesByMatchdayQuery = "SELECT * FROM matches WHERE matchday = ? ORDER BY kickoff_time ASC, home_team ASC"

func (s *MatchStore) GetMatchesByMatchday(ctx context.Context, matchday int) ([]pool.Match, error) {
	var matches []pool.Match
	err := s.db.SelectContext(ctx, &matches, matchesByMatchdayQuery, matchday)
	return matches, err
}

func (s *MatchStore) GetMatchesByMatchdayTx(ctx context.Context, tx *sqlx.Tx, matchday int) ([]pool.Match, error) {
	var matches []pool.Match
	err := tx.SelectContext(ctx, &matches, matchesByMatchdayQuery, matchday)
	return matches, err
}

func (s *MatchStore) ListMatchdays(ctx context.Context) ([]int, error) {
	var matchdays []int
	err := s.db.SelectContext(ctx, &matchdays, "SELECT DISTINCT matchday FROM matches ORDER BY matchday ASC")
	return matchdays, err
}

// RecordResult stores the result of a match. Recording it again corrects the score.
func (s *MatchStore) RecordResult(ctx context.Context, result *pool.Result) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO results (match_id, home_score, away_score, matchday)
		VALUES (:match_id, :home_score, :away_score, :matchday)
		ON CONFLICT(match_id) DO UPDATE SET
			home_score = excluded.home_score,
			away_score = excluded.away_score,
			matchday = excluded.matchday,
			updated_at = CURRENT_TIMESTAMP`, result)
	return err
}

func (s *MatchStore) GetResult(ctx context.Context, matchID uuid.UUID) (*pool.Result, error) {
	var result pool.Result
	err := s.db.GetContext(ctx, &result, "SELECT * FROM results WHERE match_id = ?", matchID)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Results are looked up through their match, the denormalized matchday on a result is optional
const resultsByMatchdayQuery = `SELECT r.* FROM results r
	JOIN matches m ON m.id = r.match_id
	WHERE m.matchday = ?`

func (s *MatchStore) GetResultsByMatchday(ctx context.Context, matchday int) ([]pool.Result, error) {
	var results []pool.Result
	err := s.db.SelectContext(ctx, &results, resultsByMatchdayQuery, matchday)
	return results, err
}

func (s *MatchStore) GetResultsByMatchdayTx(ctx context.Context, tx *sqlx.Tx, matchday int) ([]pool.Result, error) {
	var results []pool.Result
	err := tx.SelectContext(ctx, &results, resultsByMatchdayQuery, matchday)
	return results, err
}
