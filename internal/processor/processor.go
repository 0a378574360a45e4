package processor

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/proamhub/rankings/internal/league"
	"github.com/proamhub/rankings/internal/ledger"
	"github.com/proamhub/rankings/internal/metrics"
	"github.com/proamhub/rankings/internal/pubsub"
	"github.com/proamhub/rankings/internal/rating"
)

// New creates a new Processor.
func New(store Store, l ledger.Ledger, updater rating.Updater, notifier Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient) *Processor {
	return &Processor{
		store:    store,
		ledger:   l,
		rating:   updater,
		pubsub:   pubsub,
		notifier: notifier,
		metrics:  metrics,
	}
}

// HandleMatchCompleted records a reported result, rates the match, and hands
// the RP award off to the award-rp consumer. Redelivery of the same message is
// benign: an already-completed match skips straight to rating, and the rating
// updater rejects a second rating of the same match.
func (p *Processor) HandleMatchCompleted(msg *MatchCompleted, dryRun bool) error {
	start := time.Now()
	log.Info("Processing match result", "matchID", msg.MatchID, "scoreA", msg.ScoreA, "scoreB", msg.ScoreB)

	match, err := p.store.GetMatch(msg.MatchID)
	if err != nil {
		return fmt.Errorf("failed to load match %s: %w", msg.MatchID, err)
	}

	if match.Status != league.StatusCompleted {
		if dryRun {
			if msg.ScoreA == msg.ScoreB {
				return league.ErrInconsistentResult
			}
			log.Info("[Dry Run] Would complete and rate match", "matchID", match.ID)
			return p.notifier.SendResultNotification(match, nil, dryRun)
		}
		match, err = p.store.CompleteMatch(msg.MatchID, msg.ScoreA, msg.ScoreB)
		if err != nil {
			return err
		}
	} else {
		log.Debug("Match already completed, proceeding to rating", "matchID", match.ID)
	}

	if dryRun {
		log.Info("[Dry Run] Would rate match", "matchID", match.ID)
		return nil
	}

	result, err := p.rating.RateMatch(match.ID)
	if errors.Is(err, rating.ErrAlreadyRated) {
		log.Warn("Match already rated, skipping", "matchID", match.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to rate match %s: %w", match.ID, err)
	}
	p.metrics.IncMatchesRated()

	if err := p.pubsub.SendMessage(pubsub.EventAwardRP, &AwardRP{MatchID: match.ID}); err != nil {
		log.Error("Failed to publish award-rp message", "error", err, "matchID", match.ID)
	}

	if err := p.notifier.SendResultNotification(match, result, dryRun); err != nil {
		log.Error("Failed to send result notification", "error", err, "matchID", match.ID)
	}

	p.metrics.ObserveRatingDuration(time.Since(start).Seconds())
	log.Info("Finished processing match result", "matchID", match.ID)
	return nil
}

// HandleAwardRP credits the configured win/loss RP awards for a rated match.
// The award reason is derived from the match id, so a redelivered message
// finds the existing transaction and does not credit twice.
func (p *Processor) HandleAwardRP(msg *AwardRP, dryRun bool) error {
	match, err := p.store.GetMatch(msg.MatchID)
	if err != nil {
		return fmt.Errorf("failed to load match %s: %w", msg.MatchID, err)
	}
	if match.Status != league.StatusCompleted {
		return fmt.Errorf("match %s is not completed", match.ID)
	}

	winner, err := match.WinnerID()
	if err != nil {
		return err
	}
	loser := match.TeamA
	if winner == match.TeamA {
		loser = match.TeamB
	}

	if match.EventID == "" {
		log.Debug("Match has no event, no RP to award", "matchID", match.ID)
		return nil
	}
	event, err := p.store.GetEvent(match.EventID)
	if err != nil {
		return fmt.Errorf("failed to load event %s: %w", match.EventID, err)
	}

	reason := awardReason(match.ID)
	awarded, err := p.alreadyAwarded(winner, reason)
	if err != nil {
		return err
	}
	if awarded {
		log.Warn("RP already awarded for match, skipping", "matchID", match.ID)
		return nil
	}

	if err := p.award(winner, event.WinAward, event, reason, dryRun); err != nil {
		return err
	}
	if err := p.award(loser, event.LossAward, event, reason, dryRun); err != nil {
		return err
	}
	return nil
}

func awardReason(matchID string) string {
	return fmt.Sprintf("match %s result", matchID)
}

func (p *Processor) alreadyAwarded(subjectID, reason string) (bool, error) {
	transactions, err := p.ledger.GetTransactions(subjectID)
	if err != nil {
		return false, fmt.Errorf("failed to load transactions for %s: %w", subjectID, err)
	}
	for _, tx := range transactions {
		if tx.Type == ledger.TxMatchResult && tx.Reason == reason {
			return true, nil
		}
	}
	return false, nil
}

// award credits one side's RP, capped by the event's remaining headroom so a
// subject can never earn more than the event's max_rp from it.
func (p *Processor) award(subjectID string, amount float64, event *league.EventConfig, reason string, dryRun bool) error {
	if amount <= 0 {
		return nil
	}

	if event.MaxRP > 0 {
		balance, err := p.ledger.EventBalance(subjectID, event.ID)
		if err != nil {
			return fmt.Errorf("failed to compute event balance for %s: %w", subjectID, err)
		}
		amount = math.Min(amount, event.MaxRP-balance)
		if amount <= 0 {
			log.Debug("Subject at event RP cap, nothing to award", "subjectID", subjectID, "eventID", event.ID)
			return nil
		}
	}

	if dryRun {
		log.Info("[Dry Run] Would award RP", "subjectID", subjectID, "eventID", event.ID, "amount", amount)
		return nil
	}

	if _, err := p.ledger.ApplyTransaction(subjectID, amount, ledger.TxMatchResult, event.ID, reason); err != nil {
		return fmt.Errorf("failed to award RP to %s: %w", subjectID, err)
	}
	p.metrics.IncTransactionsApplied()
	log.Info("Awarded RP", "subjectID", subjectID, "eventID", event.ID, "amount", amount)
	return nil
}
