package rating_test

import (
	"database/sql"
	"testing"

	"github.com/proamhub/rankings/internal/database"
	"github.com/proamhub/rankings/internal/league"
	"github.com/proamhub/rankings/internal/rating"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (rating.Updater, league.LeagueStore, *sql.DB, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	return rating.New(db), league.New(db), db, dbTeardown
}

func seedTeams(t *testing.T, store league.LeagueStore) {
	t.Helper()
	require.NoError(t, store.UpsertSubjects([]league.Subject{
		{ID: "team-a", Kind: league.KindTeam, Name: "Team A"},
		{ID: "team-b", Kind: league.KindTeam, Name: "Team B"},
	}))
}

func completedMatch(t *testing.T, store league.LeagueStore, id string, scoreA, scoreB int) {
	t.Helper()
	require.NoError(t, store.CreateMatch(&league.Match{ID: id, TeamA: "team-a", TeamB: "team-b"}))
	_, err := store.CompleteMatch(id, scoreA, scoreB)
	require.NoError(t, err)
}

func TestRateMatch(t *testing.T) {
	updater, store, _, teardown := setupTestDB(t)
	defer teardown()
	seedTeams(t, store)
	completedMatch(t, store, "m1", 21, 15)

	result, err := updater.RateMatch("m1")
	require.NoError(t, err)

	assert.InDelta(t, 1510, result.EloAAfter, 1e-9)
	assert.InDelta(t, 1490, result.EloBAfter, 1e-9)
	assert.Equal(t, 20.0, result.KFactor)

	teamA, err := store.GetSubject("team-a")
	require.NoError(t, err)
	teamB, err := store.GetSubject("team-b")
	require.NoError(t, err)
	assert.InDelta(t, 1510, teamA.EloRating, 1e-9)
	assert.InDelta(t, 1490, teamB.EloRating, 1e-9)
}

func TestRateMatch_AlreadyRated(t *testing.T) {
	updater, store, _, teardown := setupTestDB(t)
	defer teardown()
	seedTeams(t, store)
	completedMatch(t, store, "m1", 21, 15)

	_, err := updater.RateMatch("m1")
	require.NoError(t, err)

	_, err = updater.RateMatch("m1")
	assert.ErrorIs(t, err, rating.ErrAlreadyRated)

	// Ratings stay untouched by the rejected re-run.
	teamA, err := store.GetSubject("team-a")
	require.NoError(t, err)
	assert.InDelta(t, 1510, teamA.EloRating, 1e-9)
}

func TestRateMatch_EventKFactor(t *testing.T) {
	updater, store, _, teardown := setupTestDB(t)
	defer teardown()
	seedTeams(t, store)
	require.NoError(t, store.UpsertEvent(league.EventConfig{ID: "major", Name: "Major", KFactor: 40}))
	require.NoError(t, store.CreateMatch(&league.Match{ID: "m1", EventID: "major", TeamA: "team-a", TeamB: "team-b"}))
	_, err := store.CompleteMatch("m1", 10, 21)
	require.NoError(t, err)

	result, err := updater.RateMatch("m1")
	require.NoError(t, err)
	assert.Equal(t, 40.0, result.KFactor)
	assert.InDelta(t, 1480, result.EloAAfter, 1e-9)
	assert.InDelta(t, 1520, result.EloBAfter, 1e-9)
}

func TestRateMatch_RejectsUncompleted(t *testing.T) {
	updater, store, _, teardown := setupTestDB(t)
	defer teardown()
	seedTeams(t, store)
	require.NoError(t, store.CreateMatch(&league.Match{ID: "m1", TeamA: "team-a", TeamB: "team-b"}))

	_, err := updater.RateMatch("m1")
	assert.Error(t, err)
}

func TestReverseRating(t *testing.T) {
	updater, store, _, teardown := setupTestDB(t)
	defer teardown()
	seedTeams(t, store)
	completedMatch(t, store, "m1", 21, 15)

	_, err := updater.RateMatch("m1")
	require.NoError(t, err)

	require.NoError(t, updater.ReverseRating("m1"))

	teamA, err := store.GetSubject("team-a")
	require.NoError(t, err)
	assert.InDelta(t, 1500, teamA.EloRating, 1e-9, "reversal restores the pre-match rating")

	// After an explicit reversal the match may be rated again.
	_, err = updater.RateMatch("m1")
	require.NoError(t, err)
}

func TestReverseRating_Unrated(t *testing.T) {
	updater, store, _, teardown := setupTestDB(t)
	defer teardown()
	seedTeams(t, store)
	completedMatch(t, store, "m1", 21, 15)

	err := updater.ReverseRating("m1")
	assert.Error(t, err)
}
