package pool

import (
	"time"

	"github.com/google/uuid"
)

type Competition struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	OwnerID   uuid.UUID `db:"owner_id" json:"ownerId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// UserPoints is the stored total of a user for one matchday. It is a cache of what
// Aggregate computes and is always safe to overwrite.
type UserPoints struct {
	UserID      uuid.UUID `db:"user_id" json:"userId"`
	Matchday    int       `db:"matchday" json:"matchday"`
	TotalPoints Points    `db:"total_points" json:"totalPoints"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

type LeaderboardRow struct {
	Rank        int       `db:"-" json:"rank"`
	UserID      uuid.UUID `db:"user_id" json:"userId"`
	Username    string    `db:"username" json:"name"`
	TotalPoints Points    `db:"total_points" json:"totalPoints"`
}

// RankRows assigns ranks to rows already sorted by points, highest first.
// Equal totals share a rank and the next rank skips ahead (1, 1, 3).
func RankRows(rows []LeaderboardRow) {
	for i := range rows {
		if i > 0 && rows[i].TotalPoints == rows[i-1].TotalPoints {
			rows[i].Rank = rows[i-1].Rank
			continue
		}
		rows[i].Rank = i + 1
	}
}
