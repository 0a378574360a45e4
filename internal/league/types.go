package league

import (
	"database/sql"
	"errors"
	"sync"
)

// store handles all database operations for the league.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// ErrInconsistentResult marks a completed match with equal or missing scores.
// Such a match can never be rated or counted in standings.
var ErrInconsistentResult = errors.New("inconsistent match result: completed match requires a decisive winner")

// SubjectKind discriminates players from teams in the shared subject namespace.
type SubjectKind string

const (
	KindPlayer SubjectKind = "player"
	KindTeam   SubjectKind = "team"
)

// MatchStatus is the lifecycle state of a match.
type MatchStatus string

const (
	StatusScheduled  MatchStatus = "scheduled"
	StatusInProgress MatchStatus = "in_progress"
	StatusCompleted  MatchStatus = "completed"
	StatusCancelled  MatchStatus = "cancelled"
	StatusPostponed  MatchStatus = "postponed"
)

// Subject is a player or team tracked by the engine. CurrentRP and PeakRP are
// caches owned by the ledger; EloRating is owned by the rating updater.
type Subject struct {
	ID               string      `json:"id"`
	Kind             SubjectKind `json:"kind"`
	Name             string      `json:"name"`
	Region           string      `json:"region,omitempty"`
	TeamName         string      `json:"team_name,omitempty"`
	CurrentRP        float64     `json:"current_rp"`
	PeakRP           float64     `json:"peak_rp"`
	EloRating        float64     `json:"elo_rating"`
	PerformanceScore float64     `json:"performance_score"`
}

// Match is a fixture between two teams. Scores are nil until played.
type Match struct {
	ID         string      `json:"id"`
	EventID    string      `json:"event_id,omitempty"`
	GroupID    string      `json:"group_id,omitempty"`
	Stage      string      `json:"stage,omitempty"`
	TeamA      string      `json:"team_a"`
	TeamB      string      `json:"team_b"`
	ScoreA     *int        `json:"score_a,omitempty"`
	ScoreB     *int        `json:"score_b,omitempty"`
	Status     MatchStatus `json:"status"`
	RatedAt    *int64      `json:"rated_at,omitempty"`
	EloABefore *float64    `json:"elo_a_before,omitempty"`
	EloBBefore *float64    `json:"elo_b_before,omitempty"`
}

// WinnerID returns the winning team id, or an error when the match has no
// decisive result.
func (m *Match) WinnerID() (string, error) {
	if m.ScoreA == nil || m.ScoreB == nil || *m.ScoreA == *m.ScoreB {
		return "", ErrInconsistentResult
	}
	if *m.ScoreA > *m.ScoreB {
		return m.TeamA, nil
	}
	return m.TeamB, nil
}

// EventConfig governs awards, K-factor selection and decay for matches tagged
// with the event.
type EventConfig struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Tier         string  `json:"tier,omitempty"`
	DecayDays    *int    `json:"decay_days,omitempty"`
	DecayPercent float64 `json:"decay_percent"`
	MaxRP        float64 `json:"max_rp"`
	WinAward     float64 `json:"win_award"`
	LossAward    float64 `json:"loss_award"`
	KFactor      float64 `json:"k_factor"`
}
