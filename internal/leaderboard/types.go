package leaderboard

import (
	"database/sql"
	"fmt"

	"github.com/proamhub/rankings/internal/tier"
)

// Metric selects the value a leaderboard is ranked by.
type Metric string

const (
	MetricCurrentRP Metric = "current_rp"
	MetricPeakRP    Metric = "peak_rp"
	MetricElo       Metric = "elo_rating"
)

// column maps a metric onto its subjects column. Acting as a whitelist keeps
// the metric out of string-built SQL.
func (m Metric) column() (string, error) {
	switch m {
	case MetricCurrentRP, MetricPeakRP, MetricElo:
		return string(m), nil
	default:
		return "", fmt.Errorf("unknown leaderboard metric %q", string(m))
	}
}

// Filter narrows the ranked subject set.
type Filter struct {
	Tier   string
	Region string
}

// Pagination selects one page of the sorted set.
type Pagination struct {
	Limit  int
	Offset int
}

// Row is one ranked leaderboard entry. Rank is sequential (offset+index+1);
// ties are not collapsed, unlike standings positions.
type Row struct {
	SubjectID string          `json:"subject_id"`
	Name      string          `json:"name"`
	Rank      int             `json:"rank"`
	Value     float64         `json:"value"`
	Tier      tier.PlayerTier `json:"tier"`
}

// Page is a leaderboard response: one page of rows plus the filtered total.
type Page struct {
	Rows  []Row `json:"rows"`
	Total int   `json:"total"`
}

// Service produces sorted, paginated rankings over committed subject state.
// It is read-only and safe to call concurrently with writers.
type Service interface {
	Get(metric Metric, filter Filter, page Pagination) (*Page, error)
}

type service struct {
	db *sql.DB
}
