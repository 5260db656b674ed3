package store

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/matchday-pool/internal/pool"
	"github.com/AdamBeresnev/matchday-pool/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertUserPoints(t *testing.T) {
	db := setupTestDB(t)
	store := NewPointsStore(db)
	ctx := context.Background()

	user := createTestUser(t, db, "mieke")

	changed, err := store.UpsertUserPoints(ctx, user.ID, 1, 4)
	require.NoError(t, err)
	assert.True(t, changed, "first write is a change")

	changed, err = store.UpsertUserPoints(ctx, user.ID, 1, 4)
	require.NoError(t, err)
	assert.False(t, changed, "same total should not count as a change")

	changed, err = store.UpsertUserPoints(ctx, user.ID, 1, 6)
	require.NoError(t, err)
	assert.True(t, changed)

	points, err := store.GetUserPoints(ctx, user.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, pool.Points(6), points.TotalPoints)

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM user_points WHERE user_id = ?", user.ID))
	assert.Equal(t, 1, count)
}

func TestLeaderboard(t *testing.T) {
	db := setupTestDB(t)
	store := NewPointsStore(db)
	ctx := context.Background()

	jan := createTestUser(t, db, "jan")
	els := createTestUser(t, db, "els")
	bob := createTestUser(t, db, "bob")

	for _, p := range []struct {
		user     string
		matchday int
		total    pool.Points
	}{
		{jan.ID.String(), 1, 3},
		{jan.ID.String(), 2, 1},
		{els.ID.String(), 1, 5},
		{bob.ID.String(), 2, 4},
	} {
		_, err := db.Exec("INSERT INTO user_points (user_id, matchday, total_points) VALUES (?, ?, ?)", p.user, p.matchday, p.total)
		require.NoError(t, err)
	}

	rows, err := store.Leaderboard(ctx, nil)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "els", rows[0].Username)
	assert.Equal(t, pool.Points(5), rows[0].TotalPoints)
	// bob and jan tie on 4, then sorted by name
	assert.Equal(t, "bob", rows[1].Username)
	assert.Equal(t, "jan", rows[2].Username)
	assert.Equal(t, pool.Points(4), rows[2].TotalPoints)

	rows, err = store.Leaderboard(ctx, utils.Ptr(2))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "bob", rows[0].Username)
	assert.Equal(t, jan.ID, rows[1].UserID)
	assert.Equal(t, pool.Points(1), rows[1].TotalPoints)
}
