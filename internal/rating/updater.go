package rating

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/proamhub/rankings/internal/league"
)

// New creates a new Updater.
func New(db *sql.DB) Updater {
	return &updater{
		db:    db,
		locks: make(map[string]*sync.Mutex),
	}
}

// RateMatch applies the ELO update for a completed match, exactly once.
// The rated_at compare-and-set on the match row rejects re-runs.
func (u *updater) RateMatch(matchID string) (*Result, error) {
	match, err := u.loadMatch(matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != league.StatusCompleted {
		return nil, fmt.Errorf("match %s is %s, only completed matches are rated", matchID, match.Status)
	}
	winnerID, err := match.WinnerID()
	if err != nil {
		return nil, err
	}

	k := float64(DefaultKFactor)
	if match.EventID != "" {
		var eventK sql.NullFloat64
		err := u.db.QueryRow("SELECT k_factor FROM events WHERE id = ?", match.EventID).Scan(&eventK)
		if err != nil && err != sql.ErrNoRows {
			return nil, fmt.Errorf("failed to read event K-factor: %w", err)
		}
		if eventK.Valid && eventK.Float64 > 0 {
			k = eventK.Float64
		}
	}

	unlock := u.lockPair(match.TeamA, match.TeamB)
	defer unlock()

	tx, err := u.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var eloA, eloB float64
	if err := tx.QueryRow("SELECT elo_rating FROM subjects WHERE id = ?", match.TeamA).Scan(&eloA); err != nil {
		return nil, fmt.Errorf("failed to read team %s rating: %w", match.TeamA, err)
	}
	if err := tx.QueryRow("SELECT elo_rating FROM subjects WHERE id = ?", match.TeamB).Scan(&eloB); err != nil {
		return nil, fmt.Errorf("failed to read team %s rating: %w", match.TeamB, err)
	}

	newA, newB := Update(eloA, eloB, k, winnerID == match.TeamA)

	// Guard against double-rating: the update only lands while rated_at is
	// still unset.
	res, err := tx.Exec(`
		UPDATE matches SET rated_at = ?, elo_a_before = ?, elo_b_before = ?
		WHERE id = ? AND rated_at IS NULL
	`, time.Now().Unix(), eloA, eloB, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark match rated: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrAlreadyRated
	}

	if _, err := tx.Exec("UPDATE subjects SET elo_rating = ? WHERE id = ?", newA, match.TeamA); err != nil {
		return nil, fmt.Errorf("failed to update team %s rating: %w", match.TeamA, err)
	}
	if _, err := tx.Exec("UPDATE subjects SET elo_rating = ? WHERE id = ?", newB, match.TeamB); err != nil {
		return nil, fmt.Errorf("failed to update team %s rating: %w", match.TeamB, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit rating update: %w", err)
	}

	log.Info("Rated match", "matchID", matchID, "teamA", match.TeamA, "eloA", newA, "teamB", match.TeamB, "eloB", newB, "k", k)
	return &Result{
		MatchID:    matchID,
		TeamA:      match.TeamA,
		TeamB:      match.TeamB,
		EloABefore: eloA,
		EloBBefore: eloB,
		EloAAfter:  newA,
		EloBAfter:  newB,
		KFactor:    k,
	}, nil
}

// ReverseRating restores both teams' pre-match ratings and clears the rated
// marker so a corrected result can be re-rated.
func (u *updater) ReverseRating(matchID string) error {
	match, err := u.loadMatch(matchID)
	if err != nil {
		return err
	}
	if match.RatedAt == nil || match.EloABefore == nil || match.EloBBefore == nil {
		return fmt.Errorf("match %s has no rating to reverse", matchID)
	}

	unlock := u.lockPair(match.TeamA, match.TeamB)
	defer unlock()

	tx, err := u.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE subjects SET elo_rating = ? WHERE id = ?", *match.EloABefore, match.TeamA); err != nil {
		return fmt.Errorf("failed to restore team %s rating: %w", match.TeamA, err)
	}
	if _, err := tx.Exec("UPDATE subjects SET elo_rating = ? WHERE id = ?", *match.EloBBefore, match.TeamB); err != nil {
		return fmt.Errorf("failed to restore team %s rating: %w", match.TeamB, err)
	}
	if _, err := tx.Exec("UPDATE matches SET rated_at = NULL, elo_a_before = NULL, elo_b_before = NULL WHERE id = ?", matchID); err != nil {
		return fmt.Errorf("failed to clear rating marker: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rating reversal: %w", err)
	}
	log.Info("Reversed rating", "matchID", matchID)
	return nil
}

func (u *updater) loadMatch(matchID string) (*league.Match, error) {
	row := u.db.QueryRow(`
		SELECT id, COALESCE(event_id, ''), team_a, team_b, score_a, score_b, status, rated_at, elo_a_before, elo_b_before
		FROM matches WHERE id = ?
	`, matchID)

	var match league.Match
	err := row.Scan(
		&match.ID, &match.EventID, &match.TeamA, &match.TeamB,
		&match.ScoreA, &match.ScoreB, &match.Status, &match.RatedAt, &match.EloABefore, &match.EloBBefore,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("match %s not found", matchID)
		}
		return nil, fmt.Errorf("failed to query match: %w", err)
	}
	return &match, nil
}

// lockPair acquires both teams' exclusive scopes in id order.
func (u *updater) lockPair(a, b string) func() {
	first, second := a, b
	if second < first {
		first, second = second, first
	}
	m1 := u.lockFor(first)
	m2 := u.lockFor(second)
	m1.Lock()
	m2.Lock()
	return func() {
		m2.Unlock()
		m1.Unlock()
	}
}

func (u *updater) lockFor(subjectID string) *sync.Mutex {
	u.mu.Lock()
	defer u.mu.Unlock()
	m, ok := u.locks[subjectID]
	if !ok {
		m = &sync.Mutex{}
		u.locks[subjectID] = m
	}
	return m
}
