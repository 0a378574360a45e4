package notifier

import (
	"sync"

	"github.com/proamhub/rankings/internal/decay"
	"github.com/proamhub/rankings/internal/leaderboard"
	"github.com/proamhub/rankings/internal/league"
	"github.com/proamhub/rankings/internal/rating"
	"github.com/proamhub/rankings/internal/standings"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	SendResultNotificationCalls []struct {
		Match  *league.Match
		Result *rating.Result
	}
	SendDecayReportCalls []*decay.Report
	SendLeaderboardCalls []*leaderboard.Page
	SendStandingsCalls   []struct {
		Rows    []standings.Row
		GroupID string
	}

	// Spies for format functions
	FormatLeaderboardResponseFunc func(page *leaderboard.Page, metric leaderboard.Metric) (any, error)
	FormatStandingsResponseFunc   func(rows []standings.Row, groupID string) (any, error)

	// Last formatted responses
	LastLeaderboardResponse any
	LastStandingsResponse   any
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = nil
	m.SendDecayReportCalls = nil
	m.SendLeaderboardCalls = nil
	m.SendStandingsCalls = nil
	m.LastLeaderboardResponse = nil
	m.LastStandingsResponse = nil
}

func (m *Mock) SendResultNotification(match *league.Match, result *rating.Result, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = append(m.SendResultNotificationCalls, struct {
		Match  *league.Match
		Result *rating.Result
	}{match, result})
	return nil
}

func (m *Mock) SendDecayReport(report *decay.Report, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendDecayReportCalls = append(m.SendDecayReportCalls, report)
	return nil
}

func (m *Mock) SendLeaderboard(page *leaderboard.Page, metric leaderboard.Metric, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, page)
	return nil
}

func (m *Mock) SendStandings(rows []standings.Row, groupID string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendStandingsCalls = append(m.SendStandingsCalls, struct {
		Rows    []standings.Row
		GroupID string
	}{rows, groupID})
	return nil
}

func (m *Mock) FormatLeaderboardResponse(page *leaderboard.Page, metric leaderboard.Metric) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatLeaderboardResponseFunc != nil {
		resp, err := m.FormatLeaderboardResponseFunc(page, metric)
		m.LastLeaderboardResponse = resp
		return resp, err
	}
	m.LastLeaderboardResponse = page
	return page, nil
}

func (m *Mock) FormatStandingsResponse(rows []standings.Row, groupID string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatStandingsResponseFunc != nil {
		resp, err := m.FormatStandingsResponseFunc(rows, groupID)
		m.LastStandingsResponse = resp
		return resp, err
	}
	m.LastStandingsResponse = rows
	return rows, nil
}
