package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndJoinCompetition(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	owner := s.createUser(t, "owner")
	friend := s.createUser(t, "friend")

	competition, err := s.competitions.Create(ctx, owner.ID, CreateCompetitionRequest{Name: "  Kantoorpoule "})
	require.NoError(t, err)
	assert.Equal(t, "Kantoorpoule", competition.Name)
	assert.Len(t, competition.Code, 6)
	assert.Equal(t, owner.ID, competition.OwnerID)

	ownerCompetitions, err := s.competitions.ListForUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, ownerCompetitions, 1, "the owner is the first member")

	for i := 0; i < 2; i++ {
		joined, err := s.competitions.Join(ctx, friend.ID, JoinCompetitionRequest{Code: competition.Code})
		require.NoError(t, err)
		assert.Equal(t, competition.ID, joined.ID)
	}

	friendCompetitions, err := s.competitions.ListForUser(ctx, friend.ID)
	require.NoError(t, err)
	assert.Len(t, friendCompetitions, 1)

	board, err := s.leaderboard.Competition(ctx, friend.ID, competition.ID, nil)
	require.NoError(t, err)
	assert.Len(t, board, 2)
}

func TestJoinCompetition_Errors(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	user := s.createUser(t, "jan")

	_, err := s.competitions.Join(ctx, user.ID, JoinCompetitionRequest{Code: "ZZZZZZ"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.competitions.Join(ctx, user.ID, JoinCompetitionRequest{Code: "abc"})
	assert.Error(t, err)

	competitions, err := s.competitions.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, competitions)
}

func TestJoinCompetition_CaseInsensitiveCode(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	owner := s.createUser(t, "owner")
	friend := s.createUser(t, "friend")
	s.competitions.newCode = func() string { return "AB12CD" }

	_, err := s.competitions.Create(ctx, owner.ID, CreateCompetitionRequest{Name: "Poule"})
	require.NoError(t, err)

	_, err = s.competitions.Join(ctx, friend.ID, JoinCompetitionRequest{Code: "ab12cd"})
	assert.NoError(t, err)
}

func TestCreateCompetition_RetriesOnCodeCollision(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	owner := s.createUser(t, "owner")

	codes := []string{"TAKEN1", "TAKEN1", "FRESH1"}
	s.competitions.newCode = func() string {
		code := codes[0]
		codes = codes[1:]
		return code
	}

	first, err := s.competitions.Create(ctx, owner.ID, CreateCompetitionRequest{Name: "First"})
	require.NoError(t, err)
	assert.Equal(t, "TAKEN1", first.Code)

	second, err := s.competitions.Create(ctx, owner.ID, CreateCompetitionRequest{Name: "Second"})
	require.NoError(t, err)
	assert.Equal(t, "FRESH1", second.Code)
}

func TestCreateCompetition_GivesUpAfterCollisions(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	owner := s.createUser(t, "owner")
	s.competitions.newCode = func() string { return "SAME01" }

	_, err := s.competitions.Create(ctx, owner.ID, CreateCompetitionRequest{Name: "First"})
	require.NoError(t, err)

	_, err = s.competitions.Create(ctx, owner.ID, CreateCompetitionRequest{Name: "Second"})
	assert.ErrorIs(t, err, ErrCodeExhausted)

	_, err = s.competitions.Create(ctx, owner.ID, CreateCompetitionRequest{Name: ""})
	assert.Error(t, err)
}

func TestRandomCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code := randomCode()
		assert.Regexp(t, `^[0-9A-F]{6}$`, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1)
}
