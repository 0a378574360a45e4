package leaderboard_test

import (
	"database/sql"
	"testing"

	"github.com/proamhub/rankings/internal/database"
	"github.com/proamhub/rankings/internal/leaderboard"
	"github.com/proamhub/rankings/internal/tier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (leaderboard.Service, *sql.DB, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	return leaderboard.New(db), db, dbTeardown
}

func seed(t *testing.T, db *sql.DB, id, region string, currentRP, peakRP, elo float64) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO subjects (id, kind, name, region, current_rp, peak_rp, elo_rating)
		VALUES (?, 'player', ?, ?, ?, ?, ?)
	`, id, "Player "+id, region, currentRP, peakRP, elo)
	require.NoError(t, err)
}

func TestGet_SortsDescending(t *testing.T) {
	svc, db, teardown := setupTestDB(t)
	defer teardown()
	seed(t, db, "p1", "eu", 500, 900, 1480)
	seed(t, db, "p2", "na", 1200, 1200, 1520)
	seed(t, db, "p3", "eu", 850, 1100, 1600)

	page, err := svc.Get(leaderboard.MetricCurrentRP, leaderboard.Filter{}, leaderboard.Pagination{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Rows, 3)
	assert.Equal(t, 3, page.Total)

	assert.Equal(t, "p2", page.Rows[0].SubjectID)
	assert.Equal(t, "p3", page.Rows[1].SubjectID)
	assert.Equal(t, "p1", page.Rows[2].SubjectID)
	assert.Equal(t, []int{1, 2, 3}, []int{page.Rows[0].Rank, page.Rows[1].Rank, page.Rows[2].Rank})
	assert.Equal(t, tier.Platinum, page.Rows[0].Tier)
}

func TestGet_TiesKeepSequentialRanks(t *testing.T) {
	svc, db, teardown := setupTestDB(t)
	defer teardown()
	seed(t, db, "a", "", 700, 700, 1500)
	seed(t, db, "b", "", 700, 700, 1500)
	seed(t, db, "c", "", 700, 700, 1500)

	page, err := svc.Get(leaderboard.MetricCurrentRP, leaderboard.Filter{}, leaderboard.Pagination{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Rows, 3)

	// Ties are not collapsed: ranks stay sequential, ordered by subject id.
	assert.Equal(t, []int{1, 2, 3}, []int{page.Rows[0].Rank, page.Rows[1].Rank, page.Rows[2].Rank})
	assert.Equal(t, "a", page.Rows[0].SubjectID)
	assert.Equal(t, "b", page.Rows[1].SubjectID)
	assert.Equal(t, "c", page.Rows[2].SubjectID)
}

func TestGet_PaginationPartitions(t *testing.T) {
	svc, db, teardown := setupTestDB(t)
	defer teardown()

	// Many subjects sharing the same value is the worst case for pagination.
	ids := []string{"s01", "s02", "s03", "s04", "s05", "s06", "s07", "s08", "s09", "s10"}
	for _, id := range ids {
		seed(t, db, id, "", 1000, 1000, 1500)
	}

	seen := make(map[string]bool)
	limit := 3
	for offset := 0; offset < len(ids); offset += limit {
		page, err := svc.Get(leaderboard.MetricPeakRP, leaderboard.Filter{}, leaderboard.Pagination{Limit: limit, Offset: offset})
		require.NoError(t, err)
		assert.Equal(t, len(ids), page.Total)
		for _, row := range page.Rows {
			assert.False(t, seen[row.SubjectID], "subject %s appeared on two pages", row.SubjectID)
			seen[row.SubjectID] = true
		}
	}
	assert.Len(t, seen, len(ids), "concatenated pages reproduce the full set")
}

func TestGet_Filters(t *testing.T) {
	svc, db, teardown := setupTestDB(t)
	defer teardown()
	seed(t, db, "p1", "eu", 1200, 1200, 1500) // platinum
	seed(t, db, "p2", "eu", 900, 900, 1500)   // gold
	seed(t, db, "p3", "na", 1100, 1100, 1500) // platinum

	page, err := svc.Get(leaderboard.MetricCurrentRP, leaderboard.Filter{Tier: "platinum"}, leaderboard.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	page, err = svc.Get(leaderboard.MetricCurrentRP, leaderboard.Filter{Tier: "platinum", Region: "eu"}, leaderboard.Pagination{})
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "p1", page.Rows[0].SubjectID)

	_, err = svc.Get(leaderboard.MetricCurrentRP, leaderboard.Filter{Tier: "wood"}, leaderboard.Pagination{})
	assert.Error(t, err)
}

func TestGet_EmptyAndUnknownMetric(t *testing.T) {
	svc, _, teardown := setupTestDB(t)
	defer teardown()

	page, err := svc.Get(leaderboard.MetricElo, leaderboard.Filter{}, leaderboard.Pagination{})
	require.NoError(t, err)
	assert.Empty(t, page.Rows, "no data yields an empty collection, not an error")
	assert.Equal(t, 0, page.Total)

	_, err = svc.Get(leaderboard.Metric("shoe_size"), leaderboard.Filter{}, leaderboard.Pagination{})
	assert.Error(t, err)
}
