package views

import (
	"github.com/AdamBeresnev/matchday-pool/internal/pool"
	"github.com/AdamBeresnev/matchday-pool/internal/service"
)

// MatchRow is one line of the matchday page.
type MatchRow struct {
	Match      pool.Match
	Prediction *pool.Scoreline
	Result     *pool.Scoreline
	Points     *pool.Points
}

type MatchdayData struct {
	Matchday   int
	Matchdays  []int
	Rows       []MatchRow
	Summary    *pool.MatchdaySummary
	Overview   *service.MatchdayOverview
	Editable   bool
	ClosedText string
	Error      string
}

// PrepareMatchdayData lines up fixtures with the user's predictions and scores in kickoff
// order. Matches the user did not predict still get a row so they can be filled in.
func PrepareMatchdayData(overview *service.MatchdayOverview, summary *pool.MatchdaySummary, matchdays []int) MatchdayData {
	data := MatchdayData{
		Matchday:  overview.Matchday,
		Matchdays: matchdays,
		Summary:   summary,
		Overview:  overview,
		Editable:  summary.Editable() && len(overview.Matches) > 0,
	}

	switch summary.EditState() {
	case pool.EditClosedByDeadline:
		data.ClosedText = "The deadline for this matchday has passed."
	case pool.EditClosedByResults:
		data.ClosedText = "All results are in for this matchday."
	}

	for _, m := range overview.Matches {
		row := MatchRow{Match: m}
		if score, ok := summary.Scores[m.ID]; ok {
			prediction := score.Prediction
			row.Prediction = &prediction
			row.Points = score.Points
		}
		if result, ok := overview.Results[m.ID]; ok {
			actual := result.Scoreline()
			row.Result = &actual
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}
