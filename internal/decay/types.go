package decay

import (
	"fmt"
	"time"

	"github.com/proamhub/rankings/internal/league"
	"github.com/proamhub/rankings/internal/ledger"
)

// Ledger is the slice of the ledger interface the runner needs.
type Ledger interface {
	ApplyTransaction(subjectID string, amount float64, txType ledger.TransactionType, eventID, reason string) (*ledger.Snapshot, error)
	EventBalance(subjectID, eventID string) (float64, error)
	DecayBasis(subjectID, eventID string) (time.Time, error)
	SubjectsWithEventRP(eventID string) ([]string, error)
}

// EventSource provides the events carrying a decay policy.
type EventSource interface {
	GetEventsWithDecay() ([]league.EventConfig, error)
}

// Notifier receives the report of a run with failures.
type Notifier interface {
	SendDecayReport(report *Report, dryRun bool) error
}

// Metrics is the slice of application metrics the runner records.
type Metrics interface {
	IncDecayRuns()
	IncDecaySubjectFailures()
}

// Entry records one decay transaction applied during a run.
type Entry struct {
	SubjectID string  `json:"subject_id"`
	EventID   string  `json:"event_id"`
	Amount    float64 `json:"amount"`
	Periods   int     `json:"periods"`
}

// SubjectFailure records one subject the run could not decay. The run
// continues past failures; they are retried on the next scheduled run.
type SubjectFailure struct {
	SubjectID string `json:"subject_id"`
	EventID   string `json:"event_id"`
	Err       string `json:"error"`
}

// Report summarizes one decay run.
type Report struct {
	StartedAt time.Time        `json:"started_at"`
	Events    int              `json:"events"`
	Checked   int              `json:"checked"`
	Applied   []Entry          `json:"applied"`
	Failures  []SubjectFailure `json:"failures"`
}

// PartialFailure reports whether any subject failed during the run.
func (r *Report) PartialFailure() bool {
	return len(r.Failures) > 0
}

func (r *Report) String() string {
	return fmt.Sprintf("decay run: %d events, %d subjects checked, %d decayed, %d failed",
		r.Events, r.Checked, len(r.Applied), len(r.Failures))
}

// Runner applies scheduled RP decay per event configuration.
type Runner struct {
	ledger         Ledger
	events         EventSource
	notifier       Notifier
	metrics        Metrics
	interval       time.Duration
	subjectTimeout time.Duration
}
