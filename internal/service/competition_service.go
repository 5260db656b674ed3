package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/AdamBeresnev/matchday-pool/internal/logger"
	"github.com/AdamBeresnev/matchday-pool/internal/pool"
	"github.com/AdamBeresnev/matchday-pool/internal/store"
	"github.com/AdamBeresnev/matchday-pool/internal/validation"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

const maxCodeAttempts = 5

type CreateCompetitionRequest struct {
	Name string `json:"name" validate:"required,min=1,max=64"`
}

type JoinCompetitionRequest struct {
	Code string `json:"code" validate:"required,competitioncode"`
}

type CompetitionService struct {
	db          *sqlx.DB
	store       *store.CompetitionStore
	leaderboard *LeaderboardService
	newCode     func() string
}

func NewCompetitionService(db *sqlx.DB, store *store.CompetitionStore, leaderboard *LeaderboardService) *CompetitionService {
	return &CompetitionService{db: db, store: store, leaderboard: leaderboard, newCode: randomCode}
}

// randomCode takes the first characters of a fresh uuid, which is plenty for a join code.
func randomCode() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(hex[:validation.CompetitionCodeLength])
}

// Create makes a competition with a fresh join code. The owner becomes its first member.
func (s *CompetitionService) Create(ctx context.Context, ownerID uuid.UUID, req CreateCompetitionRequest) (*pool.Competition, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		competition := &pool.Competition{
			ID:      uuid.New(),
			Name:    req.Name,
			Code:    s.newCode(),
			OwnerID: ownerID,
		}

		err := s.create(ctx, competition)
		if err == nil {
			logger.FromContext(ctx).Info("competition created", "competition_id", competition.ID, "owner_id", ownerID)
			return s.Get(ctx, competition.ID)
		}
		if !isUniqueViolation(err) {
			return nil, err
		}
		logger.FromContext(ctx).Warn("competition code collision", "code", competition.Code, "attempt", attempt)
	}

	return nil, ErrCodeExhausted
}

func (s *CompetitionService) create(ctx context.Context, competition *pool.Competition) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.store.CreateCompetition(ctx, tx, competition); err != nil {
		return err
	}
	if err := s.store.AddMemberTx(ctx, tx, competition.ID, competition.OwnerID); err != nil {
		return fmt.Errorf("failed to add owner: %w", err)
	}
	return tx.Commit()
}

// Join adds the user to the competition with the given code. Joining twice is a no-op.
func (s *CompetitionService) Join(ctx context.Context, userID uuid.UUID, req JoinCompetitionRequest) (*pool.Competition, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	competition, err := s.store.GetCompetitionByCode(ctx, strings.ToUpper(req.Code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("competition code %s: %w", req.Code, ErrNotFound)
		}
		return nil, err
	}

	if err := s.store.AddMember(ctx, competition.ID, userID); err != nil {
		return nil, fmt.Errorf("failed to join competition: %w", err)
	}
	if s.leaderboard != nil {
		s.leaderboard.Invalidate()
	}

	logger.FromContext(ctx).Info("competition joined", "competition_id", competition.ID, "user_id", userID)
	return competition, nil
}

func (s *CompetitionService) ListForUser(ctx context.Context, userID uuid.UUID) ([]pool.Competition, error) {
	competitions, err := s.store.GetCompetitionsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if competitions == nil {
		competitions = []pool.Competition{}
	}
	return competitions, nil
}

func (s *CompetitionService) Get(ctx context.Context, id uuid.UUID) (*pool.Competition, error) {
	competition, err := s.store.GetCompetition(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("competition %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return competition, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
