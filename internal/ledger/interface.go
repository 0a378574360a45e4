package ledger

import "time"

// Ledger defines the interface for the append-only RP transaction ledger.
// The subject's current_rp/peak_rp columns are a projection the ledger alone
// is permitted to write.
type Ledger interface {
	ApplyTransaction(subjectID string, amount float64, txType TransactionType, eventID, reason string) (*Snapshot, error)
	ApplyManualAdjustment(subjectID string, amount float64, reason string) (*Snapshot, error)
	GetBalance(subjectID string) (*Snapshot, error)
	ReplayLedger(subjectID string) (*Snapshot, error)
	GetTransactions(subjectID string) ([]Transaction, error)

	// Decay support: RP attributable to an event and the reference point the
	// next decay is computed from.
	EventBalance(subjectID, eventID string) (float64, error)
	DecayBasis(subjectID, eventID string) (time.Time, error)
	SubjectsWithEventRP(eventID string) ([]string, error)
}
