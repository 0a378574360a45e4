package league

import (
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// New creates a new LeagueStore.
func New(db *sql.DB) LeagueStore {
	return &store{
		db: db,
	}
}

// UpsertSubject inserts a subject or refreshes its identity fields. RP and
// rating caches are never touched here; those belong to the ledger and the
// rating updater.
func (s *store) UpsertSubject(subject Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertSubjectLocked(subject)
}

// UpsertSubjects bulk-upserts subjects in a single transaction.
func (s *store) UpsertSubjects(subjects []Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, subject := range subjects {
		if err := upsertSubjectTx(tx, subject); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *store) upsertSubjectLocked(subject Subject) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()
	if err := upsertSubjectTx(tx, subject); err != nil {
		return err
	}
	return tx.Commit()
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func upsertSubjectTx(tx execer, subject Subject) error {
	if subject.EloRating == 0 {
		subject.EloRating = EloBaseline
	}
	_, err := tx.Exec(`
		INSERT INTO subjects (id, kind, name, region, team_name, elo_rating, performance_score)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			region = excluded.region,
			team_name = excluded.team_name,
			performance_score = excluded.performance_score;
	`, subject.ID, subject.Kind, subject.Name, subject.Region, subject.TeamName, subject.EloRating, subject.PerformanceScore)
	if err != nil {
		return fmt.Errorf("failed to upsert subject %s: %w", subject.ID, err)
	}
	return nil
}

// EloBaseline is the rating assigned to a team before its first rated match.
const EloBaseline = 1500

func (s *store) GetSubject(subjectID string) (*Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, kind, name, region, team_name, current_rp, peak_rp, elo_rating, performance_score
		FROM subjects WHERE id = ?
	`, subjectID)

	var subject Subject
	err := row.Scan(
		&subject.ID, &subject.Kind, &subject.Name, &subject.Region, &subject.TeamName,
		&subject.CurrentRP, &subject.PeakRP, &subject.EloRating, &subject.PerformanceScore,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("subject %s not found", subjectID)
		}
		return nil, fmt.Errorf("failed to query subject: %w", err)
	}
	return &subject, nil
}

func (s *store) GetAllSubjects() ([]Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, kind, name, region, team_name, current_rp, peak_rp, elo_rating, performance_score
		FROM subjects ORDER BY name
	`)
	if err != nil {
		log.Error("Failed to query all subjects", "error", err)
		return nil, err
	}
	defer rows.Close()

	var subjects []Subject
	for rows.Next() {
		var subject Subject
		if err := rows.Scan(
			&subject.ID, &subject.Kind, &subject.Name, &subject.Region, &subject.TeamName,
			&subject.CurrentRP, &subject.PeakRP, &subject.EloRating, &subject.PerformanceScore,
		); err != nil {
			log.Error("Failed to scan subject row", "error", err)
			continue
		}
		subjects = append(subjects, subject)
	}
	return subjects, nil
}

func (s *store) IsKnownSubject(subjectID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM subjects WHERE id = ?)", subjectID).Scan(&exists)
	if err != nil {
		log.Error("Failed to check if subject exists", "error", err, "subjectID", subjectID)
		return false
	}
	return exists
}

// CreateMatch inserts a scheduled match. An id is generated when missing.
func (s *store) CreateMatch(match *Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if match.ID == "" {
		match.ID = uuid.New().String()
	}
	if match.Status == "" {
		match.Status = StatusScheduled
	}

	_, err := s.db.Exec(`
		INSERT INTO matches (id, event_id, group_id, stage, team_a, team_b, score_a, score_b, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, match.ID, nullString(match.EventID), match.GroupID, match.Stage, match.TeamA, match.TeamB, match.ScoreA, match.ScoreB, match.Status)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}
	log.Info("Created match", "matchID", match.ID, "teamA", match.TeamA, "teamB", match.TeamB)
	return nil
}

func (s *store) GetMatch(matchID string) (*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getMatchLocked(matchID)
}

func (s *store) getMatchLocked(matchID string) (*Match, error) {
	row := s.db.QueryRow(`
		SELECT id, event_id, group_id, stage, team_a, team_b, score_a, score_b, status, rated_at, elo_a_before, elo_b_before
		FROM matches WHERE id = ?
	`, matchID)
	match, err := scanMatch(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("match %s not found", matchID)
		}
		return nil, fmt.Errorf("failed to query match: %w", err)
	}
	return match, nil
}

func scanMatch(scanner interface{ Scan(...any) error }) (*Match, error) {
	var match Match
	var eventID sql.NullString
	err := scanner.Scan(
		&match.ID, &eventID, &match.GroupID, &match.Stage, &match.TeamA, &match.TeamB,
		&match.ScoreA, &match.ScoreB, &match.Status, &match.RatedAt, &match.EloABefore, &match.EloBBefore,
	)
	if err != nil {
		return nil, err
	}
	match.EventID = eventID.String
	return &match, nil
}

func (s *store) GetAllMatches() ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryMatches(`
		SELECT id, event_id, group_id, stage, team_a, team_b, score_a, score_b, status, rated_at, elo_a_before, elo_b_before
		FROM matches ORDER BY id
	`)
}

// GetCompletedMatches retrieves the completed matches in a group, in insertion
// order. Standings are recomputed from this set, never stored.
func (s *store) GetCompletedMatches(groupID string) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryMatches(`
		SELECT id, event_id, group_id, stage, team_a, team_b, score_a, score_b, status, rated_at, elo_a_before, elo_b_before
		FROM matches WHERE group_id = ? AND status = ? ORDER BY rowid
	`, groupID, StatusCompleted)
}

func (s *store) queryMatches(query string, args ...any) ([]Match, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Error("Failed to query matches", "error", err)
		return nil, err
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			log.Error("Failed to scan match row", "error", err)
			continue
		}
		matches = append(matches, *match)
	}
	return matches, nil
}

// CompleteMatch records the final score and transitions the match to
// completed. Equal scores are rejected; a match that is already completed or
// cancelled is never re-scored.
func (s *store) CompleteMatch(matchID string, scoreA, scoreB int) (*Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if scoreA == scoreB {
		return nil, ErrInconsistentResult
	}

	match, err := s.getMatchLocked(matchID)
	if err != nil {
		return nil, err
	}
	switch match.Status {
	case StatusScheduled, StatusInProgress, StatusPostponed:
		// legal transitions
	default:
		return nil, fmt.Errorf("match %s is %s and cannot be completed", matchID, match.Status)
	}

	_, err = s.db.Exec(`
		UPDATE matches SET score_a = ?, score_b = ?, status = ? WHERE id = ?
	`, scoreA, scoreB, StatusCompleted, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to complete match: %w", err)
	}

	match.ScoreA = &scoreA
	match.ScoreB = &scoreB
	match.Status = StatusCompleted
	log.Info("Completed match", "matchID", matchID, "scoreA", scoreA, "scoreB", scoreB)
	return match, nil
}

func (s *store) UpsertEvent(event EventConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.KFactor == 0 {
		event.KFactor = 20
	}
	_, err := s.db.Exec(`
		INSERT INTO events (id, name, tier, decay_days, decay_percent, max_rp, win_award, loss_award, k_factor)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			tier = excluded.tier,
			decay_days = excluded.decay_days,
			decay_percent = excluded.decay_percent,
			max_rp = excluded.max_rp,
			win_award = excluded.win_award,
			loss_award = excluded.loss_award,
			k_factor = excluded.k_factor;
	`, event.ID, event.Name, event.Tier, event.DecayDays, event.DecayPercent, event.MaxRP, event.WinAward, event.LossAward, event.KFactor)
	if err != nil {
		return fmt.Errorf("failed to upsert event %s: %w", event.ID, err)
	}
	return nil
}

func (s *store) GetEvent(eventID string) (*EventConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, name, tier, decay_days, decay_percent, max_rp, win_award, loss_award, k_factor
		FROM events WHERE id = ?
	`, eventID)

	var event EventConfig
	err := row.Scan(
		&event.ID, &event.Name, &event.Tier, &event.DecayDays, &event.DecayPercent,
		&event.MaxRP, &event.WinAward, &event.LossAward, &event.KFactor,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("event %s not found", eventID)
		}
		return nil, fmt.Errorf("failed to query event: %w", err)
	}
	return &event, nil
}

// GetEventsWithDecay retrieves every event with a decay policy configured.
func (s *store) GetEventsWithDecay() ([]EventConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, name, tier, decay_days, decay_percent, max_rp, win_award, loss_award, k_factor
		FROM events WHERE decay_days IS NOT NULL ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []EventConfig
	for rows.Next() {
		var event EventConfig
		if err := rows.Scan(
			&event.ID, &event.Name, &event.Tier, &event.DecayDays, &event.DecayPercent,
			&event.MaxRP, &event.WinAward, &event.LossAward, &event.KFactor,
		); err != nil {
			log.Error("Failed to scan event row", "error", err)
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for clearing store", "error", err)
		return
	}

	for _, table := range []string{"rp_transactions", "matches", "events", "subjects"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "table", table, "error", err)
			tx.Rollback()
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction for clearing store", "error", err)
	}
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
