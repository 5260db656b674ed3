package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/AdamBeresnev/matchday-pool/internal/logger"
	"github.com/AdamBeresnev/matchday-pool/internal/pool"
	"github.com/AdamBeresnev/matchday-pool/internal/validation"
	"github.com/google/uuid"
)

// ImportFixtures schedules a batch of matches in one transaction. Every line of input
// reads "matchday;kickoff;home team;away team" with the kickoff in RFC 3339. Blank lines
// and lines starting with # are skipped. One bad line rejects the whole batch.
func (s *MatchService) ImportFixtures(ctx context.Context, input string) ([]pool.Match, error) {
	reader := csv.NewReader(strings.NewReader(input))
	reader.Comma = ';'
	reader.Comment = '#'
	reader.FieldsPerRecord = 4
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	var matches []pool.Match
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFixture, err)
		}

		line, _ := reader.FieldPos(0)
		match, err := parseFixture(record)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidFixture, line, err)
		}
		matches = append(matches, match)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: no fixtures in input", ErrInvalidFixture)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.store.CreateMatches(ctx, tx, matches); err != nil {
		return nil, fmt.Errorf("failed to create matches: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("fixtures imported", "count", len(matches))
	return matches, nil
}

func parseFixture(record []string) (pool.Match, error) {
	matchday, err := strconv.Atoi(strings.TrimSpace(record[0]))
	if err != nil {
		return pool.Match{}, fmt.Errorf("matchday %q is not a number", record[0])
	}
	kickoff, err := time.Parse(time.RFC3339, strings.TrimSpace(record[1]))
	if err != nil {
		return pool.Match{}, fmt.Errorf("kickoff %q is not an RFC 3339 time", record[1])
	}

	req := ScheduleMatchRequest{
		HomeTeam:    strings.TrimSpace(record[2]),
		AwayTeam:    strings.TrimSpace(record[3]),
		Matchday:    matchday,
		KickoffTime: kickoff,
	}
	if err := validation.Struct(req); err != nil {
		var fields []string
		for field, msg := range validation.FormatValidationError(err) {
			fields = append(fields, field+": "+msg)
		}
		sort.Strings(fields)
		return pool.Match{}, errors.New(strings.Join(fields, ", "))
	}

	return pool.Match{
		ID:          uuid.New(),
		HomeTeam:    req.HomeTeam,
		AwayTeam:    req.AwayTeam,
		Matchday:    req.Matchday,
		KickoffTime: kickoff.UTC(),
	}, nil
}
