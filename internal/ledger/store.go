package ledger

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// New creates a new Ledger.
func New(db *sql.DB) Ledger {
	return &store{
		db:    db,
		locks: newSubjectLocks(),
	}
}

// ApplyTransaction appends one immutable ledger row and updates the subject's
// cached RP in the same database transaction. The projection is clamped at
// zero; a decay or penalty that would cross zero discards the excess. Both
// writes commit together or not at all.
func (s *store) ApplyTransaction(subjectID string, amount float64, txType TransactionType, eventID, reason string) (*Snapshot, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, ErrInvalidAmount
	}

	unlock := s.locks.lock(subjectID)
	defer unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var currentRP, peakRP float64
	err = tx.QueryRow("SELECT current_rp, peak_rp FROM subjects WHERE id = ?", subjectID).Scan(&currentRP, &peakRP)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidSubject
		}
		return nil, fmt.Errorf("failed to read subject: %w", err)
	}

	newRP := math.Max(0, currentRP+amount)
	newPeak := math.Max(peakRP, newRP)

	_, err = tx.Exec(`
		INSERT INTO rp_transactions (id, subject_id, amount, type, event_id, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, uuid.New().String(), subjectID, amount, txType, nullString(eventID), reason, time.Now().Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to append ledger row: %w", err)
	}

	_, err = tx.Exec("UPDATE subjects SET current_rp = ?, peak_rp = ? WHERE id = ?", newRP, newPeak, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to update RP cache: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit ledger transaction: %w", err)
	}

	log.Debug("Applied RP transaction", "subjectID", subjectID, "amount", amount, "type", txType, "currentRP", newRP)
	return &Snapshot{SubjectID: subjectID, CurrentRP: newRP, PeakRP: newPeak}, nil
}

// ApplyManualAdjustment is a thin wrapper over ApplyTransaction for correcting
// ledger errors. The reason is mandatory so every correction stays auditable.
func (s *store) ApplyManualAdjustment(subjectID string, amount float64, reason string) (*Snapshot, error) {
	if reason == "" {
		return nil, ErrMissingReason
	}
	snapshot, err := s.ApplyTransaction(subjectID, amount, TxAdjustment, "", reason)
	if err != nil {
		return nil, err
	}
	log.Info("Applied manual adjustment", "subjectID", subjectID, "amount", amount, "reason", reason)
	return snapshot, nil
}

// GetBalance returns the cached projection. O(1), the hot path.
func (s *store) GetBalance(subjectID string) (*Snapshot, error) {
	var snapshot Snapshot
	snapshot.SubjectID = subjectID
	err := s.db.QueryRow("SELECT current_rp, peak_rp FROM subjects WHERE id = ?", subjectID).
		Scan(&snapshot.CurrentRP, &snapshot.PeakRP)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidSubject
		}
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}
	return &snapshot, nil
}

// ReplayLedger recomputes the projection from the full transaction history.
// Used as an audit/repair consistency check against GetBalance, not as the
// hot path.
func (s *store) ReplayLedger(subjectID string) (*Snapshot, error) {
	if exists, err := s.subjectExists(subjectID); err != nil {
		return nil, err
	} else if !exists {
		return nil, ErrInvalidSubject
	}

	rows, err := s.db.Query(`
		SELECT amount FROM rp_transactions WHERE subject_id = ? ORDER BY created_at, rowid
	`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer rows.Close()

	var current, peak float64
	for rows.Next() {
		var amount float64
		if err := rows.Scan(&amount); err != nil {
			return nil, fmt.Errorf("failed to scan ledger row: %w", err)
		}
		current = math.Max(0, current+amount)
		peak = math.Max(peak, current)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &Snapshot{SubjectID: subjectID, CurrentRP: current, PeakRP: peak}, nil
}

func (s *store) GetTransactions(subjectID string) ([]Transaction, error) {
	rows, err := s.db.Query(`
		SELECT id, subject_id, amount, type, event_id, reason, created_at
		FROM rp_transactions WHERE subject_id = ? ORDER BY created_at, rowid
	`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []Transaction
	for rows.Next() {
		var t Transaction
		var eventID sql.NullString
		var createdAt int64
		if err := rows.Scan(&t.ID, &t.SubjectID, &t.Amount, &t.Type, &eventID, &t.Reason, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		t.EventID = eventID.String
		t.CreatedAt = time.Unix(createdAt, 0)
		transactions = append(transactions, t)
	}
	return transactions, nil
}

// EventBalance sums a subject's transactions attributed to one event,
// clamped at zero.
func (s *store) EventBalance(subjectID, eventID string) (float64, error) {
	var balance float64
	err := s.db.QueryRow(`
		SELECT COALESCE(SUM(amount), 0) FROM rp_transactions WHERE subject_id = ? AND event_id = ?
	`, subjectID, eventID).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("failed to sum event balance: %w", err)
	}
	return math.Max(0, balance), nil
}

// DecayBasis returns the point in time the next decay period is measured
// from: the most recent decay applied for the subject+event, falling back to
// the most recent qualifying award. Computing decay relative to this basis
// keeps scheduled runs idempotent under retries.
func (s *store) DecayBasis(subjectID, eventID string) (time.Time, error) {
	var ts sql.NullInt64
	err := s.db.QueryRow(`
		SELECT MAX(created_at) FROM rp_transactions
		WHERE subject_id = ? AND event_id = ? AND type = ?
	`, subjectID, eventID, TxDecay).Scan(&ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query decay basis: %w", err)
	}
	if ts.Valid {
		return time.Unix(ts.Int64, 0), nil
	}

	err = s.db.QueryRow(`
		SELECT MAX(created_at) FROM rp_transactions
		WHERE subject_id = ? AND event_id = ? AND amount > 0
	`, subjectID, eventID).Scan(&ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query award basis: %w", err)
	}
	if !ts.Valid {
		return time.Time{}, fmt.Errorf("no qualifying transactions for subject %s in event %s", subjectID, eventID)
	}
	return time.Unix(ts.Int64, 0), nil
}

// SubjectsWithEventRP lists subjects currently holding RP attributable to an
// event.
func (s *store) SubjectsWithEventRP(eventID string) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT subject_id FROM rp_transactions
		WHERE event_id = ?
		GROUP BY subject_id
		HAVING SUM(amount) > 0
		ORDER BY subject_id
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query event subjects: %w", err)
	}
	defer rows.Close()

	var subjectIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		subjectIDs = append(subjectIDs, id)
	}
	return subjectIDs, nil
}

func (s *store) subjectExists(subjectID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM subjects WHERE id = ?)", subjectID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check subject: %w", err)
	}
	return exists, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
