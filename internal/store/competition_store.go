package store

import (
	"context"

	"github.com/AdamBeresnev/matchday-pool/internal/pool"
	users "github.com/AdamBeresnev/matchday-pool/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CompetitionStore struct {
	db *sqlx.DB
}

func NewCompetitionStore(db *sqlx.DB) *CompetitionStore {
	return &CompetitionStore{db: db}
}

func (s *CompetitionStore) CreateCompetition(ctx context.Context, tx *sqlx.Tx, competition *pool.Competition) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO competitions (id, name, code, owner_id)
		VALUES (:id, :name, :code, :owner_id)`, competition)
	return err
}

// AddMemberTx does nothing when the user is already a member.
func (s *CompetitionStore) AddMemberTx(ctx context.Context, tx *sqlx.Tx, competitionID, userID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO competition_members (competition_id, user_id) VALUES (?, ?)
		ON CONFLICT(competition_id, user_id) DO NOTHING`, competitionID, userID)
	return err
}

func (s *CompetitionStore) AddMember(ctx context.Context, competitionID, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO competition_members (competition_id, user_id) VALUES (?, ?)
		ON CONFLICT(competition_id, user_id) DO NOTHING`, competitionID, userID)
	return err
}

func (s *CompetitionStore) GetCompetition(ctx context.Context, id uuid.UUID) (*pool.Competition, error) {
	var competition pool.Competition
	err := s.db.GetContext(ctx, &competition, "SELECT * FROM competitions WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	return &competition, nil
}

func (s *CompetitionStore) GetCompetitionByCode(ctx context.Context, code string) (*pool.Competition, error) {
	var competition pool.Competition
	err := s.db.GetContext(ctx, &competition, "SELECT * FROM competitions WHERE code = ?", code)
	if err != nil {
		return nil, err
	}
	return &competition, nil
}

func (s *CompetitionStore) GetCompetitionsForUser(ctx context.Context, userID uuid.UUID) ([]pool.Competition, error) {
	var competitions []pool.Competition
	err := s.db.SelectContext(ctx, &competitions, `SELECT c.* FROM competitions c
		JOIN competition_members m ON m.competition_id = c.id
		WHERE m.user_id = ?
		ORDER BY c.created_at DESC, c.name ASC`, userID)
	return competitions, err
}

func (s *CompetitionStore) IsMember(ctx context.Context, competitionID, userID uuid.UUID) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM competition_members WHERE competition_id = ? AND user_id = ?", competitionID, userID)
	return count > 0, err
}

func (s *CompetitionStore) GetMembers(ctx context.Context, competitionID uuid.UUID) ([]users.User, error) {
	var members []users.User
	err := s.db.SelectContext(ctx, &members, `SELECT u.* FROM users u
		JOIN competition_members m ON m.user_id = u.id
		WHERE m.competition_id = ?
		ORDER BY u.username ASC`, competitionID)
	return members, err
}
