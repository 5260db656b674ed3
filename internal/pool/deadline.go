package pool

import (
	"errors"
	"fmt"
	"time"
)

// DefaultDeadlineOffset is how long before the first kickoff of a matchday predictions close.
const DefaultDeadlineOffset = 12 * time.Hour

var (
	ErrMixedMatchdays = errors.New("matches span more than one matchday")
	ErrNoMatches      = errors.New("no matches for matchday")
)

type DeadlinePolicy struct {
	Offset time.Duration
}

func NewDeadlinePolicy(offset time.Duration) DeadlinePolicy {
	if offset < 0 {
		offset = 0
	}
	return DeadlinePolicy{Offset: offset}
}

// CheckMatchday makes sure every match belongs to the same matchday.
func CheckMatchday(matches []Match) error {
	if len(matches) == 0 {
		return nil
	}
	for _, m := range matches[1:] {
		if m.Matchday != matches[0].Matchday {
			return fmt.Errorf("%w: %d and %d", ErrMixedMatchdays, matches[0].Matchday, m.Matchday)
		}
	}
	return nil
}

// Deadline returns the submission cutoff for one matchday's matches. ok is false when there
// are no matches, in which case there is nothing to predict yet.
func (p DeadlinePolicy) Deadline(matches []Match) (deadline time.Time, ok bool, err error) {
	if len(matches) == 0 {
		return time.Time{}, false, nil
	}
	if err := CheckMatchday(matches); err != nil {
		return time.Time{}, false, err
	}

	first := matches[0].KickoffTime
	for _, m := range matches[1:] {
		if m.KickoffTime.Before(first) {
			first = m.KickoffTime
		}
	}
	return first.Add(-p.Offset), true, nil
}

// Passed reports whether now is strictly after the matchday's deadline.
// An empty matchday has no deadline and is never past it.
func (p DeadlinePolicy) Passed(matches []Match, now time.Time) (bool, error) {
	deadline, ok, err := p.Deadline(matches)
	if err != nil || !ok {
		return false, err
	}
	return now.After(deadline), nil
}
