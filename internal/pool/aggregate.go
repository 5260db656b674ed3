package pool

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDeadlinePassed   = errors.New("prediction deadline has passed")
	ErrResultsAvailable = errors.New("results are already available")
	ErrUnknownMatch     = errors.New("match is not part of this matchday")
)

type EditState string

const (
	EditOpen             EditState = "open"
	EditClosedByDeadline EditState = "closed_deadline"
	EditClosedByResults  EditState = "closed_results"
)

// MatchScore is one prediction of a matchday. Points is nil while the match has no result,
// which is not the same as a result that earned zero points.
type MatchScore struct {
	MatchID    uuid.UUID  `json:"matchId"`
	Prediction Scoreline  `json:"prediction"`
	Result     *Scoreline `json:"result"`
	Points     *Points    `json:"points"`
}

func (m MatchScore) Pending() bool {
	return m.Points == nil
}

type MatchdaySummary struct {
	Matchday            int                      `json:"matchday"`
	Scores              map[uuid.UUID]MatchScore `json:"scores"`
	TotalPoints         Points                   `json:"totalPoints"`
	AllResultsAvailable bool                     `json:"resultsAvailable"`
	DeadlinePassed      bool                     `json:"deadlinePassed"`
	Deadline            *time.Time               `json:"deadline"`
}

// EditState combines the deadline and the results flags. Results coming in before the
// deadline also close editing.
func (s MatchdaySummary) EditState() EditState {
	switch {
	case s.DeadlinePassed:
		return EditClosedByDeadline
	case s.AllResultsAvailable:
		return EditClosedByResults
	default:
		return EditOpen
	}
}

func (s MatchdaySummary) Editable() bool {
	return s.EditState() == EditOpen
}

// CheckEditable returns the error that matches the edit state, or nil while editing is open.
func (s MatchdaySummary) CheckEditable() error {
	switch s.EditState() {
	case EditClosedByDeadline:
		return ErrDeadlinePassed
	case EditClosedByResults:
		return ErrResultsAvailable
	default:
		return nil
	}
}

// AllResultsAvailable is true when every match has a result. No matches means no results.
func AllResultsAvailable(matches []Match, results []Result) bool {
	if len(matches) == 0 {
		return false
	}
	have := make(map[uuid.UUID]struct{}, len(results))
	for _, r := range results {
		have[r.MatchID] = struct{}{}
	}
	for _, m := range matches {
		if _, ok := have[m.ID]; !ok {
			return false
		}
	}
	return true
}

// Aggregate scores one user's predictions for a single matchday. It only reads its inputs,
// so the totals can always be recomputed from the raw predictions and results.
func (p DeadlinePolicy) Aggregate(predictions []Prediction, results []Result, matches []Match, now time.Time) (MatchdaySummary, error) {
	deadline, hasDeadline, err := p.Deadline(matches)
	if err != nil {
		return MatchdaySummary{}, err
	}

	summary := MatchdaySummary{
		Scores:              make(map[uuid.UUID]MatchScore, len(predictions)),
		AllResultsAvailable: AllResultsAvailable(matches, results),
	}
	if len(matches) > 0 {
		summary.Matchday = matches[0].Matchday
	} else if len(predictions) > 0 {
		summary.Matchday = predictions[0].Matchday
	}
	if hasDeadline {
		summary.Deadline = &deadline
		summary.DeadlinePassed = now.After(deadline)
	}

	byMatch := make(map[uuid.UUID]Result, len(results))
	for _, r := range results {
		byMatch[r.MatchID] = r
	}

	for _, pred := range predictions {
		score := MatchScore{
			MatchID:    pred.MatchID,
			Prediction: pred.Scoreline(),
		}
		if res, ok := byMatch[pred.MatchID]; ok {
			actual := res.Scoreline()
			points, err := Score(score.Prediction, actual)
			if err != nil {
				return MatchdaySummary{}, fmt.Errorf("match %s: %w", pred.MatchID, err)
			}
			score.Result = &actual
			score.Points = &points
			summary.TotalPoints += points
		}
		summary.Scores[pred.MatchID] = score
	}

	return summary, nil
}
