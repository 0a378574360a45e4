// Package standings folds completed matches into per-team win/loss records.
// The output is a pure function of the match set; nothing here is persisted.
package standings

import (
	"sort"

	"github.com/proamhub/rankings/internal/league"
)

// Row is one team's derived record within a group or season.
type Row struct {
	TeamID            string  `json:"team_id"`
	MatchesPlayed     int     `json:"matches_played"`
	Wins              int     `json:"wins"`
	Losses            int     `json:"losses"`
	PointsFor         int     `json:"points_for"`
	PointsAgainst     int     `json:"points_against"`
	PointDifferential int     `json:"point_differential"`
	WinPercentage     float64 `json:"win_percentage"`
	Position          int     `json:"position"`
}

// Compute folds the completed matches in scope into ordered standings rows.
// Matches that are not completed are skipped; a completed match without a
// decisive score is rejected with league.ErrInconsistentResult.
func Compute(matches []league.Match) ([]Row, error) {
	index := make(map[string]*Row)
	var order []string

	row := func(teamID string) *Row {
		r, ok := index[teamID]
		if !ok {
			r = &Row{TeamID: teamID}
			index[teamID] = r
			order = append(order, teamID)
		}
		return r
	}

	for _, match := range matches {
		if match.Status != league.StatusCompleted {
			continue
		}
		if match.ScoreA == nil || match.ScoreB == nil || *match.ScoreA == *match.ScoreB {
			return nil, league.ErrInconsistentResult
		}
		scoreA, scoreB := *match.ScoreA, *match.ScoreB

		rowA := row(match.TeamA)
		rowB := row(match.TeamB)

		rowA.MatchesPlayed++
		rowB.MatchesPlayed++
		rowA.PointsFor += scoreA
		rowA.PointsAgainst += scoreB
		rowB.PointsFor += scoreB
		rowB.PointsAgainst += scoreA

		if scoreA > scoreB {
			rowA.Wins++
			rowB.Losses++
		} else {
			rowB.Wins++
			rowA.Losses++
		}
	}

	rows := make([]Row, 0, len(order))
	for _, teamID := range order {
		r := index[teamID]
		r.PointDifferential = r.PointsFor - r.PointsAgainst
		if r.MatchesPlayed > 0 {
			r.WinPercentage = float64(r.Wins) / float64(r.MatchesPlayed)
		}
		rows = append(rows, *r)
	}

	// Sort: winPercentage desc, pointDifferential desc, pointsFor desc.
	// Ties beyond that keep stable input order; the product rules mention a
	// head-to-head tiebreak that remains unresolved with the domain owner.
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].WinPercentage != rows[j].WinPercentage {
			return rows[i].WinPercentage > rows[j].WinPercentage
		}
		if rows[i].PointDifferential != rows[j].PointDifferential {
			return rows[i].PointDifferential > rows[j].PointDifferential
		}
		return rows[i].PointsFor > rows[j].PointsFor
	})

	// Standard competition ranking: tied rows share a position and the next
	// distinct row skips ahead.
	for i := range rows {
		if i > 0 && sameKey(rows[i], rows[i-1]) {
			rows[i].Position = rows[i-1].Position
		} else {
			rows[i].Position = i + 1
		}
	}

	return rows, nil
}

func sameKey(a, b Row) bool {
	return a.WinPercentage == b.WinPercentage &&
		a.PointDifferential == b.PointDifferential &&
		a.PointsFor == b.PointsFor
}
