package standings

import (
	"testing"

	"github.com/proamhub/rankings/internal/league"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completed(teamA, teamB string, scoreA, scoreB int) league.Match {
	return league.Match{
		TeamA:  teamA,
		TeamB:  teamB,
		ScoreA: &scoreA,
		ScoreB: &scoreB,
		Status: league.StatusCompleted,
	}
}

func TestCompute_ThreeTeamGroup(t *testing.T) {
	// X goes 2-0, Y 1-1, Z 0-2.
	matches := []league.Match{
		completed("x", "y", 21, 15),
		completed("x", "z", 21, 10),
		completed("y", "z", 21, 18),
	}

	rows, err := Compute(matches)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "x", rows[0].TeamID)
	assert.Equal(t, "y", rows[1].TeamID)
	assert.Equal(t, "z", rows[2].TeamID)
	assert.Equal(t, 1.0, rows[0].WinPercentage)
	assert.Equal(t, 0.5, rows[1].WinPercentage)
	assert.Equal(t, 0.0, rows[2].WinPercentage)
	assert.Equal(t, []int{1, 2, 3}, []int{rows[0].Position, rows[1].Position, rows[2].Position})

	// Invariants: every completed match contributes to two rows, and
	// wins+losses always equals matches played.
	totalPlayed := 0
	for _, row := range rows {
		totalPlayed += row.MatchesPlayed
		assert.Equal(t, row.MatchesPlayed, row.Wins+row.Losses)
	}
	assert.Equal(t, 2*len(matches), totalPlayed)
}

func TestCompute_Tiebreaks(t *testing.T) {
	// Both teams 1-1; a wins big and loses small, so differential decides.
	matches := []league.Match{
		completed("a", "b", 30, 10),
		completed("b", "a", 15, 14),
		completed("c", "d", 20, 5),
		completed("d", "c", 21, 6),
	}

	rows, err := Compute(matches)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "a", rows[0].TeamID, "a has the best differential at 1-1")
	assert.Greater(t, rows[0].PointDifferential, rows[1].PointDifferential)
}

func TestCompute_CompetitionRanking(t *testing.T) {
	// e and f post identical records against different opponents: they share
	// a position and the next team skips ahead.
	matches := []league.Match{
		completed("e", "g", 20, 10),
		completed("f", "h", 20, 10),
		completed("g", "h", 15, 12),
	}

	rows, err := Compute(matches)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, 1, rows[0].Position)
	assert.Equal(t, 1, rows[1].Position, "identical sort keys share a position")
	assert.Equal(t, 3, rows[2].Position, "next distinct row skips ahead")
}

func TestCompute_SkipsUnplayedAndRejectsTies(t *testing.T) {
	rows, err := Compute([]league.Match{
		{TeamA: "a", TeamB: "b", Status: league.StatusScheduled},
	})
	require.NoError(t, err)
	assert.Empty(t, rows, "scheduled matches contribute nothing")

	_, err = Compute([]league.Match{completed("a", "b", 10, 10)})
	assert.ErrorIs(t, err, league.ErrInconsistentResult)

	tied := league.Match{TeamA: "a", TeamB: "b", Status: league.StatusCompleted}
	_, err = Compute([]league.Match{tied})
	assert.ErrorIs(t, err, league.ErrInconsistentResult, "completed match with missing scores is rejected")
}

func TestCompute_Empty(t *testing.T) {
	rows, err := Compute(nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCompute_Deterministic(t *testing.T) {
	matches := []league.Match{
		completed("x", "y", 21, 15),
		completed("x", "z", 21, 10),
		completed("y", "z", 21, 18),
	}
	first, err := Compute(matches)
	require.NoError(t, err)
	second, err := Compute(matches)
	require.NoError(t, err)
	assert.Equal(t, first, second, "same match set must produce the same order")
}
