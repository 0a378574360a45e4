package ledger

import (
	"database/sql"
	"errors"
	"sync"
	"time"
)

// Errors surfaced to callers verbatim. Mutations fail fast and leave state
// unchanged.
var (
	ErrInvalidSubject = errors.New("invalid subject: referenced player or team does not exist")
	ErrInvalidAmount  = errors.New("invalid amount: transaction amount must be finite")
	ErrMissingReason  = errors.New("missing reason: manual adjustments must carry a reason")
)

// TransactionType classifies ledger entries.
type TransactionType string

const (
	TxEventAward  TransactionType = "event_award"
	TxBonus       TransactionType = "bonus"
	TxPenalty     TransactionType = "penalty"
	TxAdjustment  TransactionType = "adjustment"
	TxMatchResult TransactionType = "match_result"
	TxDecay       TransactionType = "decay"
)

// Transaction is one immutable ledger row.
type Transaction struct {
	ID        string          `json:"id"`
	SubjectID string          `json:"subject_id"`
	Amount    float64         `json:"amount"`
	Type      TransactionType `json:"type"`
	EventID   string          `json:"event_id,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Snapshot is the materialized RP state of a subject after a ledger write.
type Snapshot struct {
	SubjectID string  `json:"subject_id"`
	CurrentRP float64 `json:"current_rp"`
	PeakRP    float64 `json:"peak_rp"`
}

// store handles all database operations for the ledger.
type store struct {
	db    *sql.DB
	locks *subjectLocks
}

// subjectLocks serializes writes per subject without a global lock. Unrelated
// subjects' transactions proceed independently.
type subjectLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSubjectLocks() *subjectLocks {
	return &subjectLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *subjectLocks) get(subjectID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[subjectID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[subjectID] = m
	}
	return m
}

// lock acquires the subject's exclusive scope.
func (l *subjectLocks) lock(subjectID string) func() {
	m := l.get(subjectID)
	m.Lock()
	return m.Unlock
}
