package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/AdamBeresnev/matchday-pool/internal/metrics"
	"github.com/AdamBeresnev/matchday-pool/internal/pool"
	"github.com/AdamBeresnev/matchday-pool/internal/store"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const leaderboardCacheName = "leaderboard"

type LeaderboardService struct {
	points       *store.PointsStore
	competitions *store.CompetitionStore
	cache        *expirable.LRU[string, []pool.LeaderboardRow]

	// generation moves on every Invalidate, loads that started earlier are not cached
	mu         sync.Mutex
	generation uint64
}

func NewLeaderboardService(points *store.PointsStore, competitions *store.CompetitionStore, size int, ttl time.Duration) *LeaderboardService {
	return &LeaderboardService{
		points:       points,
		competitions: competitions,
		cache:        expirable.NewLRU[string, []pool.LeaderboardRow](size, nil, ttl),
	}
}

// Global ranks every user by the sum of their matchday totals. A nil matchday covers the
// whole season.
func (s *LeaderboardService) Global(ctx context.Context, matchday *int) ([]pool.LeaderboardRow, error) {
	return s.cached("global:"+matchdayKey(matchday), func() ([]pool.LeaderboardRow, error) {
		return s.points.Leaderboard(ctx, matchday)
	})
}

// Competition ranks the members of a competition. Only members may look at it.
func (s *LeaderboardService) Competition(ctx context.Context, userID, competitionID uuid.UUID, matchday *int) ([]pool.LeaderboardRow, error) {
	if _, err := s.competitions.GetCompetition(ctx, competitionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("competition %s: %w", competitionID, ErrNotFound)
		}
		return nil, err
	}

	member, err := s.competitions.IsMember(ctx, competitionID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, fmt.Errorf("competition %s: %w", competitionID, ErrForbidden)
	}

	key := "competition:" + competitionID.String() + ":" + matchdayKey(matchday)
	return s.cached(key, func() ([]pool.LeaderboardRow, error) {
		return s.points.CompetitionLeaderboard(ctx, competitionID, matchday)
	})
}

// Invalidate drops every cached leaderboard.
func (s *LeaderboardService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.cache.Purge()
}

func (s *LeaderboardService) cached(key string, load func() ([]pool.LeaderboardRow, error)) ([]pool.LeaderboardRow, error) {
	if rows, ok := s.cache.Get(key); ok {
		metrics.CacheHits.WithLabelValues(leaderboardCacheName).Inc()
		return rows, nil
	}
	metrics.CacheMisses.WithLabelValues(leaderboardCacheName).Inc()

	s.mu.Lock()
	generation := s.generation
	s.mu.Unlock()

	rows, err := load()
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	if rows == nil {
		rows = []pool.LeaderboardRow{}
	}
	pool.RankRows(rows)

	s.mu.Lock()
	if s.generation == generation {
		s.cache.Add(key, rows)
	}
	s.mu.Unlock()
	return rows, nil
}

func matchdayKey(matchday *int) string {
	if matchday == nil {
		return "all"
	}
	return strconv.Itoa(*matchday)
}
