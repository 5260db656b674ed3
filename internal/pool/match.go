package pool

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

type Match struct {
	ID          uuid.UUID `db:"id" json:"id"`
	HomeTeam    string    `db:"home_team" json:"homeTeam"`
	AwayTeam    string    `db:"away_team" json:"awayTeam"`
	Matchday    int       `db:"matchday" json:"matchday"`
	KickoffTime time.Time `db:"kickoff_time" json:"kickoffTime"`
	CreatedAt   time.Time `db:"created_at" json:"-"`
}

// Result is the official final score of a match, at most one per match.
type Result struct {
	MatchID   uuid.UUID `db:"match_id" json:"matchId"`
	HomeScore int       `db:"home_score" json:"homeScore"`
	AwayScore int       `db:"away_score" json:"awayScore"`
	// Copy of the match's matchday, may be missing on older rows
	Matchday  *int      `db:"matchday" json:"matchday,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"-"`
}

func (r Result) Scoreline() Scoreline {
	return Scoreline{Home: r.HomeScore, Away: r.AwayScore}
}

// Prediction is keyed by (UserID, MatchID).
type Prediction struct {
	UserID        uuid.UUID `db:"user_id" json:"userId"`
	MatchID       uuid.UUID `db:"match_id" json:"matchId"`
	Matchday      int       `db:"matchday" json:"matchday"`
	PredictedHome int       `db:"predicted_home" json:"predictedHome"`
	PredictedAway int       `db:"predicted_away" json:"predictedAway"`
	CreatedAt     time.Time `db:"created_at" json:"-"`
	UpdatedAt     time.Time `db:"updated_at" json:"-"`
}

func (p Prediction) Scoreline() Scoreline {
	return Scoreline{Home: p.PredictedHome, Away: p.PredictedAway}
}

// SortByKickoff orders matches by kickoff time, earliest first. Ties keep their input order.
func SortByKickoff(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].KickoffTime.Before(matches[j].KickoffTime)
	})
}
