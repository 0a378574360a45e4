package rating

import (
	"database/sql"
	"errors"
	"sync"
)

// ErrAlreadyRated marks an attempt to re-run the rating step for a match
// that was already processed. Ratings are never overwritten silently; an
// explicit reversal must be applied first.
var ErrAlreadyRated = errors.New("match already rated: apply a reversal before re-rating")

// Result reports the rating change applied for one match.
type Result struct {
	MatchID    string  `json:"match_id"`
	TeamA      string  `json:"team_a"`
	TeamB      string  `json:"team_b"`
	EloABefore float64 `json:"elo_a_before"`
	EloBBefore float64 `json:"elo_b_before"`
	EloAAfter  float64 `json:"elo_a_after"`
	EloBAfter  float64 `json:"elo_b_after"`
	KFactor    float64 `json:"k_factor"`
}

// Updater applies ELO updates for completed matches.
type Updater interface {
	RateMatch(matchID string) (*Result, error)
	ReverseRating(matchID string) error
}

// updater handles rating mutations. Both teams' ratings move in one database
// transaction; pairs of team locks are always taken in id order to avoid
// deadlock against concurrent submissions.
type updater struct {
	db    *sql.DB
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}
