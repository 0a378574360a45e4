package decay

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/proamhub/rankings/internal/ledger"
)

// New creates a new decay Runner.
func New(l Ledger, events EventSource, notifier Notifier, metrics Metrics, interval, subjectTimeout time.Duration) *Runner {
	return &Runner{
		ledger:         l,
		events:         events,
		notifier:       notifier,
		metrics:        metrics,
		interval:       interval,
		subjectTimeout: subjectTimeout,
	}
}

// Start runs the scheduler loop until the context is cancelled.
func (r *Runner) Start(ctx context.Context) {
	log.Info("Decay scheduler started", "interval", r.interval)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Decay scheduler stopped")
			return
		case <-ticker.C:
			report := r.Run(ctx, false)
			if report.PartialFailure() {
				if err := r.notifier.SendDecayReport(report, false); err != nil {
					log.Error("Failed to send decay report", "error", err)
				}
			}
		}
	}
}

// Run executes one decay pass over every event with a decay policy. A failing
// subject never aborts the batch; failures are collected into the report and
// retried on the next scheduled run. The run is cancellable between subjects,
// never mid-transaction.
func (r *Runner) Run(ctx context.Context, dryRun bool) *Report {
	report := &Report{StartedAt: time.Now()}
	r.metrics.IncDecayRuns()

	events, err := r.events.GetEventsWithDecay()
	if err != nil {
		log.Error("Failed to load decay events", "error", err)
		report.Failures = append(report.Failures, SubjectFailure{Err: err.Error()})
		return report
	}
	report.Events = len(events)

	for _, event := range events {
		if event.DecayDays == nil || *event.DecayDays <= 0 || event.DecayPercent <= 0 {
			continue
		}

		subjects, err := r.ledger.SubjectsWithEventRP(event.ID)
		if err != nil {
			log.Error("Failed to list subjects for decay", "eventID", event.ID, "error", err)
			report.Failures = append(report.Failures, SubjectFailure{EventID: event.ID, Err: err.Error()})
			continue
		}

		for _, subjectID := range subjects {
			if ctx.Err() != nil {
				log.Warn("Decay run cancelled", "remaining_event", event.ID)
				return report
			}
			report.Checked++

			entry, err := r.decaySubject(subjectID, event.ID, *event.DecayDays, event.DecayPercent, dryRun)
			if err != nil {
				r.metrics.IncDecaySubjectFailures()
				log.Error("Failed to decay subject", "subjectID", subjectID, "eventID", event.ID, "error", err)
				report.Failures = append(report.Failures, SubjectFailure{SubjectID: subjectID, EventID: event.ID, Err: err.Error()})
				continue
			}
			if entry != nil {
				report.Applied = append(report.Applied, *entry)
			}
		}
	}

	log.Info("Decay run finished", "summary", report.String(), "dryRun", dryRun)
	return report
}

// decaySubject computes and applies decay for one subject+event, bounded by
// the per-subject timeout.
func (r *Runner) decaySubject(subjectID, eventID string, decayDays int, decayPercent float64, dryRun bool) (*Entry, error) {
	type outcome struct {
		entry *Entry
		err   error
	}
	done := make(chan outcome, 1)

	go func() {
		entry, err := r.decayOne(subjectID, eventID, decayDays, decayPercent, dryRun)
		done <- outcome{entry, err}
	}()

	select {
	case out := <-done:
		return out.entry, out.err
	case <-time.After(r.subjectTimeout):
		return nil, fmt.Errorf("decay for subject %s timed out after %s", subjectID, r.subjectTimeout)
	}
}

func (r *Runner) decayOne(subjectID, eventID string, decayDays int, decayPercent float64, dryRun bool) (*Entry, error) {
	basis, err := r.ledger.DecayBasis(subjectID, eventID)
	if err != nil {
		return nil, err
	}

	period := time.Duration(decayDays) * 24 * time.Hour
	periods := int(time.Since(basis) / period)
	if periods < 1 {
		return nil, nil
	}

	balance, err := r.ledger.EventBalance(subjectID, eventID)
	if err != nil {
		return nil, err
	}
	if balance <= 0 {
		return nil, nil
	}

	// Linear decay per elapsed period, clamped to the event balance. The
	// ledger clamps the overall projection at zero regardless.
	amount := math.Min(balance, balance*decayPercent/100*float64(periods))

	if dryRun {
		log.Info("[Dry Run] Would apply decay", "subjectID", subjectID, "eventID", eventID, "amount", -amount, "periods", periods)
		return &Entry{SubjectID: subjectID, EventID: eventID, Amount: -amount, Periods: periods}, nil
	}

	if _, err := r.ledger.ApplyTransaction(subjectID, -amount, ledger.TxDecay, eventID, ""); err != nil {
		return nil, err
	}
	return &Entry{SubjectID: subjectID, EventID: eventID, Amount: -amount, Periods: periods}, nil
}
