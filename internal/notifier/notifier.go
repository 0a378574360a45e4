package notifier

import (
	"github.com/proamhub/rankings/internal/decay"
	"github.com/proamhub/rankings/internal/leaderboard"
	"github.com/proamhub/rankings/internal/league"
	"github.com/proamhub/rankings/internal/rating"
	"github.com/proamhub/rankings/internal/standings"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For rated matches
	SendResultNotification(match *league.Match, result *rating.Result, dryRun bool) error
	// For decay runs with failures
	SendDecayReport(report *decay.Report, dryRun bool) error
	// For slash commands
	SendLeaderboard(page *leaderboard.Page, metric leaderboard.Metric, dryRun bool) error
	SendStandings(rows []standings.Row, groupID string, dryRun bool) error

	// For formatting responses for slash commands
	FormatLeaderboardResponse(page *leaderboard.Page, metric leaderboard.Metric) (any, error)
	FormatStandingsResponse(rows []standings.Row, groupID string) (any, error)
}
