package decay_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/proamhub/rankings/internal/database"
	"github.com/proamhub/rankings/internal/decay"
	"github.com/proamhub/rankings/internal/league"
	"github.com/proamhub/rankings/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spyNotifier struct {
	reports []*decay.Report
}

func (s *spyNotifier) SendDecayReport(report *decay.Report, dryRun bool) error {
	s.reports = append(s.reports, report)
	return nil
}

type spyMetrics struct {
	runs     int
	failures int
}

func (s *spyMetrics) IncDecayRuns()            { s.runs++ }
func (s *spyMetrics) IncDecaySubjectFailures() { s.failures++ }

func setupTestDB(t *testing.T) (ledger.Ledger, league.LeagueStore, *sql.DB, func()) {
	t.Helper()
	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	return ledger.New(db), league.New(db), db, dbTeardown
}

// seedAgedAward writes an award transaction with an old timestamp and syncs
// the subject's RP cache, simulating RP earned in the past.
func seedAgedAward(t *testing.T, db *sql.DB, subjectID, eventID string, amount float64, age time.Duration) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO rp_transactions (id, subject_id, amount, type, event_id, reason, created_at)
		VALUES (?, ?, ?, 'event_award', ?, '', ?)
	`, uuid.New().String(), subjectID, amount, eventID, time.Now().Add(-age).Unix())
	require.NoError(t, err)
	_, err = db.Exec(`
		UPDATE subjects SET current_rp = current_rp + ?, peak_rp = MAX(peak_rp, current_rp + ?) WHERE id = ?
	`, amount, amount, subjectID)
	require.NoError(t, err)
}

func newRunner(l ledger.Ledger, store league.LeagueStore, notifier *spyNotifier, metrics *spyMetrics) *decay.Runner {
	return decay.New(l, store, notifier, metrics, time.Hour, 2*time.Second)
}

func decayDays(days int) *int { return &days }

func TestRun_AppliesDecay(t *testing.T) {
	l, store, db, teardown := setupTestDB(t)
	defer teardown()

	require.NoError(t, store.UpsertSubject(league.Subject{ID: "p1", Kind: league.KindPlayer, Name: "P1"}))
	require.NoError(t, store.UpsertEvent(league.EventConfig{
		ID: "ev1", Name: "Season 1", DecayDays: decayDays(7), DecayPercent: 10,
	}))
	// Award 100 RP, 15 days ago: two full 7-day periods elapsed, 10% each.
	seedAgedAward(t, db, "p1", "ev1", 100, 15*24*time.Hour)

	runner := newRunner(l, store, &spyNotifier{}, &spyMetrics{})
	report := runner.Run(context.Background(), false)

	require.False(t, report.PartialFailure())
	require.Len(t, report.Applied, 1)
	assert.Equal(t, -20.0, report.Applied[0].Amount)
	assert.Equal(t, 2, report.Applied[0].Periods)

	snap, err := l.GetBalance("p1")
	require.NoError(t, err)
	assert.Equal(t, 80.0, snap.CurrentRP)
	assert.Equal(t, 100.0, snap.PeakRP)
}

func TestRun_IdempotentAcrossRetries(t *testing.T) {
	l, store, db, teardown := setupTestDB(t)
	defer teardown()

	require.NoError(t, store.UpsertSubject(league.Subject{ID: "p1", Kind: league.KindPlayer, Name: "P1"}))
	require.NoError(t, store.UpsertEvent(league.EventConfig{
		ID: "ev1", Name: "Season 1", DecayDays: decayDays(7), DecayPercent: 10,
	}))
	seedAgedAward(t, db, "p1", "ev1", 100, 10*24*time.Hour)

	runner := newRunner(l, store, &spyNotifier{}, &spyMetrics{})
	first := runner.Run(context.Background(), false)
	require.Len(t, first.Applied, 1)

	// A re-run measures from the decay just applied, so nothing more decays.
	second := runner.Run(context.Background(), false)
	assert.Empty(t, second.Applied, "retry must not double-decay")

	snap, err := l.GetBalance("p1")
	require.NoError(t, err)
	assert.Equal(t, 90.0, snap.CurrentRP)
}

func TestRun_ClampsAtZero(t *testing.T) {
	l, store, db, teardown := setupTestDB(t)
	defer teardown()

	require.NoError(t, store.UpsertSubject(league.Subject{ID: "p1", Kind: league.KindPlayer, Name: "P1"}))
	require.NoError(t, store.UpsertEvent(league.EventConfig{
		ID: "ev1", Name: "Season 1", DecayDays: decayDays(1), DecayPercent: 50,
	}))
	// 30 RP awarded long ago: computed decay far exceeds the balance.
	seedAgedAward(t, db, "p1", "ev1", 30, 40*24*time.Hour)

	runner := newRunner(l, store, &spyNotifier{}, &spyMetrics{})
	report := runner.Run(context.Background(), false)

	require.Len(t, report.Applied, 1)
	assert.Equal(t, -30.0, report.Applied[0].Amount, "decay never exceeds the event balance")

	snap, err := l.GetBalance("p1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, snap.CurrentRP, "RP lands on zero, never negative")
}

func TestRun_SkipsFreshAwards(t *testing.T) {
	l, store, db, teardown := setupTestDB(t)
	defer teardown()

	require.NoError(t, store.UpsertSubject(league.Subject{ID: "p1", Kind: league.KindPlayer, Name: "P1"}))
	require.NoError(t, store.UpsertEvent(league.EventConfig{
		ID: "ev1", Name: "Season 1", DecayDays: decayDays(7), DecayPercent: 10,
	}))
	seedAgedAward(t, db, "p1", "ev1", 100, 2*24*time.Hour)

	runner := newRunner(l, store, &spyNotifier{}, &spyMetrics{})
	report := runner.Run(context.Background(), false)
	assert.Empty(t, report.Applied)
	assert.Equal(t, 1, report.Checked)
}

func TestRun_PartialFailureContinues(t *testing.T) {
	_, store, db, teardown := setupTestDB(t)
	defer teardown()

	require.NoError(t, store.UpsertSubject(league.Subject{ID: "p1", Kind: league.KindPlayer, Name: "P1"}))
	require.NoError(t, store.UpsertSubject(league.Subject{ID: "p2", Kind: league.KindPlayer, Name: "P2"}))
	require.NoError(t, store.UpsertEvent(league.EventConfig{
		ID: "ev1", Name: "Season 1", DecayDays: decayDays(7), DecayPercent: 10,
	}))
	seedAgedAward(t, db, "p1", "ev1", 100, 10*24*time.Hour)
	seedAgedAward(t, db, "p2", "ev1", 100, 10*24*time.Hour)

	metrics := &spyMetrics{}
	failing := ledger.NewMock()
	real, _, _, _ := setupFailingLedger(t, db, failing)

	runner := decay.New(real, store, &spyNotifier{}, metrics, time.Hour, 2*time.Second)
	report := runner.Run(context.Background(), false)

	assert.True(t, report.PartialFailure())
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "p1", report.Failures[0].SubjectID)
	require.Len(t, report.Applied, 1, "the healthy subject still decays")
	assert.Equal(t, "p2", report.Applied[0].SubjectID)
	assert.Equal(t, 1, metrics.failures)
}

// setupFailingLedger wraps a real ledger so that p1's write always fails.
func setupFailingLedger(t *testing.T, db *sql.DB, mock *ledger.MockLedger) (decay.Ledger, *sql.DB, *ledger.MockLedger, func()) {
	t.Helper()
	real := ledger.New(db)
	mock.ApplyTransactionFunc = func(subjectID string, amount float64, txType ledger.TransactionType, eventID, reason string) (*ledger.Snapshot, error) {
		if subjectID == "p1" {
			return nil, assert.AnError
		}
		return real.ApplyTransaction(subjectID, amount, txType, eventID, reason)
	}
	mock.EventBalanceFunc = real.EventBalance
	mock.DecayBasisFunc = real.DecayBasis
	mock.SubjectsWithEventRPFunc = real.SubjectsWithEventRP
	return mock, db, mock, func() {}
}

func TestRun_Cancellable(t *testing.T) {
	l, store, _, teardown := setupTestDB(t)
	defer teardown()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := newRunner(l, store, &spyNotifier{}, &spyMetrics{})
	report := runner.Run(ctx, false)
	assert.Empty(t, report.Applied)
}
