package leaderboard

import (
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/proamhub/rankings/internal/tier"
)

const defaultLimit = 50

// New creates a new leaderboard Service.
func New(db *sql.DB) Service {
	return &service{db: db}
}

// Get returns one page of the subject set sorted by the metric, descending.
// Subject id ascending is always applied as the final sort key so repeated
// calls with increasing offsets partition the set without gaps or duplicates
// even when many subjects share a value.
func (s *service) Get(metric Metric, filter Filter, page Pagination) (*Page, error) {
	column, err := metric.column()
	if err != nil {
		return nil, err
	}
	if page.Limit <= 0 {
		page.Limit = defaultLimit
	}
	if page.Offset < 0 {
		page.Offset = 0
	}

	where, args, err := buildFilter(filter)
	if err != nil {
		return nil, err
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM subjects" + where
	if err := s.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count leaderboard subjects: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, %s, current_rp FROM subjects%s
		ORDER BY %s DESC, id ASC LIMIT ? OFFSET ?
	`, column, where, column)
	rows, err := s.db.Query(query, append(args, page.Limit, page.Offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	result := &Page{Rows: []Row{}, Total: total}
	rank := page.Offset
	for rows.Next() {
		var row Row
		var currentRP float64
		if err := rows.Scan(&row.SubjectID, &row.Name, &row.Value, &currentRP); err != nil {
			log.Error("Failed to scan leaderboard row", "error", err)
			continue
		}
		rank++
		row.Rank = rank
		row.Tier = tier.ForRP(currentRP)
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}

func buildFilter(filter Filter) (string, []any, error) {
	clauses := []string{}
	args := []any{}

	if filter.Tier != "" {
		if !tier.Valid(filter.Tier) {
			return "", nil, fmt.Errorf("unknown tier %q", filter.Tier)
		}
		min, max, hasMax := tier.RPBounds(tier.PlayerTier(filter.Tier))
		clauses = append(clauses, "current_rp >= ?")
		args = append(args, min)
		if hasMax {
			clauses = append(clauses, "current_rp < ?")
			args = append(args, max)
		}
	}
	if filter.Region != "" {
		clauses = append(clauses, "region = ?")
		args = append(args, filter.Region)
	}

	if len(clauses) == 0 {
		return "", args, nil
	}
	where := " WHERE " + clauses[0]
	for _, clause := range clauses[1:] {
		where += " AND " + clause
	}
	return where, args, nil
}
