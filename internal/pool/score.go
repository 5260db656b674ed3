package pool

import (
	"errors"
	"fmt"
)

var ErrInvalidScore = errors.New("invalid score")

type Outcome string

const (
	HomeWin Outcome = "home"
	AwayWin Outcome = "away"
	Draw    Outcome = "draw"
)

// Points awarded for a single prediction. The scale is fixed, every call site uses these.
type Points int

const (
	PointsMiss    Points = 0
	PointsOutcome Points = 1
	PointsMargin  Points = 2
	PointsExact   Points = 3
)

type Scoreline struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

func (s Scoreline) Validate() error {
	if s.Home < 0 || s.Away < 0 {
		return fmt.Errorf("%w: %d-%d", ErrInvalidScore, s.Home, s.Away)
	}
	return nil
}

// Margin is the goal differential from the home side's point of view.
func (s Scoreline) Margin() int {
	return s.Home - s.Away
}

func (s Scoreline) Outcome() Outcome {
	switch m := s.Margin(); {
	case m > 0:
		return HomeWin
	case m < 0:
		return AwayWin
	default:
		return Draw
	}
}

// Swap returns the same scoreline with the home and away sides exchanged.
func (s Scoreline) Swap() Scoreline {
	return Scoreline{Home: s.Away, Away: s.Home}
}

func (s Scoreline) String() string {
	return fmt.Sprintf("%d-%d", s.Home, s.Away)
}

// Score awards points for a predicted scoreline against the official one.
// Only the highest applicable tier counts: exact score, then goal margin, then outcome.
func Score(predicted, actual Scoreline) (Points, error) {
	if err := predicted.Validate(); err != nil {
		return PointsMiss, fmt.Errorf("prediction: %w", err)
	}
	if err := actual.Validate(); err != nil {
		return PointsMiss, fmt.Errorf("result: %w", err)
	}

	switch {
	case predicted == actual:
		return PointsExact, nil
	case predicted.Margin() == actual.Margin():
		return PointsMargin, nil
	case predicted.Outcome() == actual.Outcome():
		return PointsOutcome, nil
	default:
		return PointsMiss, nil
	}
}
