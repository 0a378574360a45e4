package processor

import (
	"testing"

	"github.com/proamhub/rankings/internal/league"
	"github.com/proamhub/rankings/internal/ledger"
	"github.com/proamhub/rankings/internal/metrics"
	"github.com/proamhub/rankings/internal/notifier"
	"github.com/proamhub/rankings/internal/pubsub"
	"github.com/proamhub/rankings/internal/rating"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestProcessor_HandleMatchCompleted(t *testing.T) {
	t.Run("reported result completes, rates and publishes the award message", func(t *testing.T) {
		// Setup
		store := league.NewMock()
		ldg := ledger.NewMock()
		updater := rating.NewMock()
		notif := notifier.NewMock()
		metr := metrics.NewMock()
		ps := pubsub.NewMock("TEST")
		p := New(store, ldg, updater, notif, metr, ps)

		scheduled := &league.Match{ID: "m1", TeamA: "t1", TeamB: "t2", Status: league.StatusScheduled}
		completed := &league.Match{ID: "m1", TeamA: "t1", TeamB: "t2", ScoreA: intPtr(21), ScoreB: intPtr(15), Status: league.StatusCompleted}
		store.GetMatchFunc = func(matchID string) (*league.Match, error) { return scheduled, nil }
		store.CompleteMatchFunc = func(matchID string, scoreA, scoreB int) (*league.Match, error) { return completed, nil }
		updater.RateMatchFunc = func(matchID string) (*rating.Result, error) {
			return &rating.Result{MatchID: matchID, TeamA: "t1", TeamB: "t2", EloABefore: 1500, EloBBefore: 1500, EloAAfter: 1510, EloBAfter: 1490}, nil
		}

		// Execute
		err := p.HandleMatchCompleted(&MatchCompleted{MatchID: "m1", ScoreA: 21, ScoreB: 15}, false)

		// Assert
		require.NoError(t, err)
		require.Len(t, store.CompleteMatchCalls, 1)
		assert.Equal(t, 21, store.CompleteMatchCalls[0].ScoreA)
		require.Len(t, updater.RateMatchCalls, 1)
		require.Len(t, ps.SendMessageCalls, 1, "an award-rp message should be published")
		assert.Equal(t, "award-rp", ps.SendMessageCalls[0].Topic)
		sent, ok := ps.SendMessageCalls[0].Data.(*AwardRP)
		require.True(t, ok, "data sent to pubsub should be an AwardRP payload")
		assert.Equal(t, "m1", sent.MatchID)
		require.Len(t, notif.SendResultNotificationCalls, 1)
		assert.Equal(t, 1, metr.MatchesRated())
	})

	t.Run("redelivery of an already rated match is benign", func(t *testing.T) {
		// Setup
		store := league.NewMock()
		ldg := ledger.NewMock()
		updater := rating.NewMock()
		notif := notifier.NewMock()
		metr := metrics.NewMock()
		ps := pubsub.NewMock("TEST")
		p := New(store, ldg, updater, notif, metr, ps)

		completed := &league.Match{ID: "m1", TeamA: "t1", TeamB: "t2", ScoreA: intPtr(21), ScoreB: intPtr(15), Status: league.StatusCompleted}
		store.GetMatchFunc = func(matchID string) (*league.Match, error) { return completed, nil }
		updater.RateMatchFunc = func(matchID string) (*rating.Result, error) { return nil, rating.ErrAlreadyRated }

		// Execute
		err := p.HandleMatchCompleted(&MatchCompleted{MatchID: "m1", ScoreA: 21, ScoreB: 15}, false)

		// Assert
		require.NoError(t, err)
		assert.Empty(t, store.CompleteMatchCalls, "a completed match is not completed again")
		assert.Empty(t, ps.SendMessageCalls, "no award message for a match already rated")
		assert.Empty(t, notif.SendResultNotificationCalls)
		assert.Equal(t, 0, metr.MatchesRated())
	})

	t.Run("dry run reports without touching the store", func(t *testing.T) {
		// Setup
		store := league.NewMock()
		p := New(store, ledger.NewMock(), rating.NewMock(), notifier.NewMock(), metrics.NewMock(), pubsub.NewMock("TEST"))

		scheduled := &league.Match{ID: "m1", TeamA: "t1", TeamB: "t2", Status: league.StatusScheduled}
		store.GetMatchFunc = func(matchID string) (*league.Match, error) { return scheduled, nil }

		// Execute
		err := p.HandleMatchCompleted(&MatchCompleted{MatchID: "m1", ScoreA: 21, ScoreB: 15}, true)

		// Assert
		require.NoError(t, err)
		assert.Empty(t, store.CompleteMatchCalls)
	})

	t.Run("tied score is rejected before any state changes", func(t *testing.T) {
		store := league.NewMock()
		p := New(store, ledger.NewMock(), rating.NewMock(), notifier.NewMock(), metrics.NewMock(), pubsub.NewMock("TEST"))

		scheduled := &league.Match{ID: "m1", TeamA: "t1", TeamB: "t2", Status: league.StatusScheduled}
		store.GetMatchFunc = func(matchID string) (*league.Match, error) { return scheduled, nil }
		store.CompleteMatchFunc = func(matchID string, scoreA, scoreB int) (*league.Match, error) {
			return nil, league.ErrInconsistentResult
		}

		err := p.HandleMatchCompleted(&MatchCompleted{MatchID: "m1", ScoreA: 15, ScoreB: 15}, false)
		assert.ErrorIs(t, err, league.ErrInconsistentResult)
	})
}

func TestProcessor_HandleAwardRP(t *testing.T) {
	completedMatch := func() *league.Match {
		return &league.Match{
			ID: "m1", EventID: "ev1", TeamA: "t1", TeamB: "t2",
			ScoreA: intPtr(21), ScoreB: intPtr(15), Status: league.StatusCompleted,
		}
	}

	t.Run("winner and loser receive the configured awards", func(t *testing.T) {
		// Setup
		store := league.NewMock()
		ldg := ledger.NewMock()
		metr := metrics.NewMock()
		p := New(store, ldg, rating.NewMock(), notifier.NewMock(), metr, pubsub.NewMock("TEST"))

		match := completedMatch()
		store.GetMatchFunc = func(matchID string) (*league.Match, error) { return match, nil }
		store.GetEventFunc = func(eventID string) (*league.EventConfig, error) {
			return &league.EventConfig{ID: eventID, WinAward: 50, LossAward: 10}, nil
		}

		// Execute
		err := p.HandleAwardRP(&AwardRP{MatchID: "m1"}, false)

		// Assert
		require.NoError(t, err)
		require.Len(t, ldg.ApplyTransactionCalls, 2)
		assert.Equal(t, "t1", ldg.ApplyTransactionCalls[0].SubjectID)
		assert.Equal(t, 50.0, ldg.ApplyTransactionCalls[0].Amount)
		assert.Equal(t, ledger.TxMatchResult, ldg.ApplyTransactionCalls[0].Type)
		assert.Equal(t, "t2", ldg.ApplyTransactionCalls[1].SubjectID)
		assert.Equal(t, 10.0, ldg.ApplyTransactionCalls[1].Amount)
		assert.Equal(t, 2, metr.TransactionsApplied())
	})

	t.Run("award is capped by the event's remaining headroom", func(t *testing.T) {
		// Setup
		store := league.NewMock()
		ldg := ledger.NewMock()
		p := New(store, ldg, rating.NewMock(), notifier.NewMock(), metrics.NewMock(), pubsub.NewMock("TEST"))

		match := completedMatch()
		store.GetMatchFunc = func(matchID string) (*league.Match, error) { return match, nil }
		store.GetEventFunc = func(eventID string) (*league.EventConfig, error) {
			return &league.EventConfig{ID: eventID, WinAward: 50, LossAward: 10, MaxRP: 100}, nil
		}
		ldg.EventBalanceFunc = func(subjectID, eventID string) (float64, error) {
			if subjectID == "t1" {
				return 80, nil // only 20 of headroom left
			}
			return 100, nil // loser is already at the cap
		}

		// Execute
		err := p.HandleAwardRP(&AwardRP{MatchID: "m1"}, false)

		// Assert
		require.NoError(t, err)
		require.Len(t, ldg.ApplyTransactionCalls, 1, "the capped-out loser gets nothing")
		assert.Equal(t, "t1", ldg.ApplyTransactionCalls[0].SubjectID)
		assert.Equal(t, 20.0, ldg.ApplyTransactionCalls[0].Amount)
	})

	t.Run("redelivered award message does not credit twice", func(t *testing.T) {
		// Setup
		store := league.NewMock()
		ldg := ledger.NewMock()
		p := New(store, ldg, rating.NewMock(), notifier.NewMock(), metrics.NewMock(), pubsub.NewMock("TEST"))

		match := completedMatch()
		store.GetMatchFunc = func(matchID string) (*league.Match, error) { return match, nil }
		store.GetEventFunc = func(eventID string) (*league.EventConfig, error) {
			return &league.EventConfig{ID: eventID, WinAward: 50, LossAward: 10}, nil
		}
		ldg.GetTransactionsFunc = func(subjectID string) ([]ledger.Transaction, error) {
			return []ledger.Transaction{
				{SubjectID: subjectID, Amount: 50, Type: ledger.TxMatchResult, Reason: "match m1 result"},
			}, nil
		}

		// Execute
		err := p.HandleAwardRP(&AwardRP{MatchID: "m1"}, false)

		// Assert
		require.NoError(t, err)
		assert.Empty(t, ldg.ApplyTransactionCalls)
	})

	t.Run("match without an event awards nothing", func(t *testing.T) {
		store := league.NewMock()
		ldg := ledger.NewMock()
		p := New(store, ldg, rating.NewMock(), notifier.NewMock(), metrics.NewMock(), pubsub.NewMock("TEST"))

		match := completedMatch()
		match.EventID = ""
		store.GetMatchFunc = func(matchID string) (*league.Match, error) { return match, nil }

		err := p.HandleAwardRP(&AwardRP{MatchID: "m1"}, false)
		require.NoError(t, err)
		assert.Empty(t, ldg.ApplyTransactionCalls)
	})
}
