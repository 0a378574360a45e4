package ledger

import (
	"sync"
	"time"
)

// MockLedger is a mock implementation of the Ledger interface for testing.
// It is safe for concurrent use.
type MockLedger struct {
	mu sync.Mutex

	// Spies for method calls
	ApplyTransactionFunc      func(subjectID string, amount float64, txType TransactionType, eventID, reason string) (*Snapshot, error)
	ApplyManualAdjustmentFunc func(subjectID string, amount float64, reason string) (*Snapshot, error)
	GetBalanceFunc            func(subjectID string) (*Snapshot, error)
	ReplayLedgerFunc          func(subjectID string) (*Snapshot, error)
	GetTransactionsFunc       func(subjectID string) ([]Transaction, error)
	EventBalanceFunc          func(subjectID, eventID string) (float64, error)
	DecayBasisFunc            func(subjectID, eventID string) (time.Time, error)
	SubjectsWithEventRPFunc   func(eventID string) ([]string, error)

	// Call records
	ApplyTransactionCalls []ApplyTransactionCall
}

// ApplyTransactionCall holds the arguments for a call to ApplyTransaction.
type ApplyTransactionCall struct {
	SubjectID string
	Amount    float64
	Type      TransactionType
	EventID   string
	Reason    string
}

// NewMock creates a new mock Ledger.
func NewMock() *MockLedger {
	return &MockLedger{}
}

func (m *MockLedger) ApplyTransaction(subjectID string, amount float64, txType TransactionType, eventID, reason string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ApplyTransactionCalls = append(m.ApplyTransactionCalls, ApplyTransactionCall{
		SubjectID: subjectID, Amount: amount, Type: txType, EventID: eventID, Reason: reason,
	})
	if m.ApplyTransactionFunc != nil {
		return m.ApplyTransactionFunc(subjectID, amount, txType, eventID, reason)
	}
	return &Snapshot{SubjectID: subjectID, CurrentRP: amount, PeakRP: amount}, nil
}

func (m *MockLedger) ApplyManualAdjustment(subjectID string, amount float64, reason string) (*Snapshot, error) {
	if reason == "" {
		return nil, ErrMissingReason
	}
	if m.ApplyManualAdjustmentFunc != nil {
		return m.ApplyManualAdjustmentFunc(subjectID, amount, reason)
	}
	return m.ApplyTransaction(subjectID, amount, TxAdjustment, "", reason)
}

func (m *MockLedger) GetBalance(subjectID string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetBalanceFunc != nil {
		return m.GetBalanceFunc(subjectID)
	}
	return &Snapshot{SubjectID: subjectID}, nil
}

func (m *MockLedger) ReplayLedger(subjectID string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReplayLedgerFunc != nil {
		return m.ReplayLedgerFunc(subjectID)
	}
	return &Snapshot{SubjectID: subjectID}, nil
}

func (m *MockLedger) GetTransactions(subjectID string) ([]Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetTransactionsFunc != nil {
		return m.GetTransactionsFunc(subjectID)
	}
	return nil, nil
}

func (m *MockLedger) EventBalance(subjectID, eventID string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.EventBalanceFunc != nil {
		return m.EventBalanceFunc(subjectID, eventID)
	}
	return 0, nil
}

func (m *MockLedger) DecayBasis(subjectID, eventID string) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DecayBasisFunc != nil {
		return m.DecayBasisFunc(subjectID, eventID)
	}
	return time.Time{}, nil
}

func (m *MockLedger) SubjectsWithEventRP(eventID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SubjectsWithEventRPFunc != nil {
		return m.SubjectsWithEventRPFunc(eventID)
	}
	return nil, nil
}
