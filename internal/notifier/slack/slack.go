package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/proamhub/rankings/internal/decay"
	"github.com/proamhub/rankings/internal/leaderboard"
	"github.com/proamhub/rankings/internal/league"
	"github.com/proamhub/rankings/internal/metrics"
	"github.com/proamhub/rankings/internal/notifier"
	"github.com/proamhub/rankings/internal/rating"
	"github.com/proamhub/rankings/internal/standings"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// Implement the Notifier interface
func (s *Notifier) SendResultNotification(match *league.Match, result *rating.Result, dryRun bool) error {
	msg := s.formatResultNotification(match, result)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendDecayReport(report *decay.Report, dryRun bool) error {
	msg := s.formatDecayReport(report)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendLeaderboard(page *leaderboard.Page, metric leaderboard.Metric, dryRun bool) error {
	msg := s.formatLeaderboard(page, metric)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendStandings(rows []standings.Row, groupID string, dryRun bool) error {
	msg := s.formatStandings(rows, groupID)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// FormatLeaderboardResponse formats a leaderboard message for a slash command response.
func (s *Notifier) FormatLeaderboardResponse(page *leaderboard.Page, metric leaderboard.Metric) (any, error) {
	return s.formatLeaderboard(page, metric), nil
}

// FormatStandingsResponse formats a standings message for a slash command response.
func (s *Notifier) FormatStandingsResponse(rows []standings.Row, groupID string) (any, error) {
	return s.formatStandings(rows, groupID), nil
}

// formatResultNotification creates the Slack message for a rated match using Block Kit.
func (s *Notifier) formatResultNotification(match *league.Match, result *rating.Result) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏀 Match finished! 🏀", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	scoreText := fmt.Sprintf("%s vs %s", match.TeamA, match.TeamB)
	if match.ScoreA != nil && match.ScoreB != nil {
		scoreText = fmt.Sprintf("%s %d - %d %s", match.TeamA, *match.ScoreA, *match.ScoreB, match.TeamB)
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", scoreText, false, false), nil, nil))

	if winner, err := match.WinnerID(); err == nil {
		winnerText := fmt.Sprintf("Result: %s won! 🏆", winner)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", winnerText, true, false), nil, nil))
	}

	if result != nil {
		ratingFields := []*slack.TextBlockObject{
			slack.NewTextBlockObject("plain_text", fmt.Sprintf("%s: %.0f → %.0f", result.TeamA, result.EloABefore, result.EloAAfter), false, false),
			slack.NewTextBlockObject("plain_text", fmt.Sprintf("%s: %.0f → %.0f", result.TeamB, result.EloBBefore, result.EloBAfter), false, false),
		}
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "Rating changes:", true, false), ratingFields, nil))
	}

	if match.EventID != "" {
		eventText := fmt.Sprintf("Event: %s", match.EventID)
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", eventText, true, false)))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatDecayReport creates a Slack message summarizing a decay run.
func (s *Notifier) formatDecayReport(report *decay.Report) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "📉 RP Decay Report 📉", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", report.String(), false, false), nil, nil))

	if len(report.Failures) > 0 {
		failureText := "Failed subjects:"
		for _, failure := range report.Failures {
			failureText += fmt.Sprintf("\n• %s (%s): %s", failure.SubjectID, failure.EventID, failure.Err)
		}
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", failureText, false, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatLeaderboard creates a Slack message to display a leaderboard page.
func (s *Notifier) formatLeaderboard(page *leaderboard.Page, metric leaderboard.Metric) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🏆 Leaderboard (%s) 🏆", metric), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if page == nil || len(page.Rows) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No subjects ranked yet. Go play some matches!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for _, row := range page.Rows {
		var medal string
		switch row.Rank {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}

		rowText := fmt.Sprintf("%d. %s %s\n> %.1f | Tier: %s",
			row.Rank,
			medal,
			row.Name,
			row.Value,
			row.Tier,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", rowText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatStandings creates a Slack message to display group standings.
func (s *Notifier) formatStandings(rows []standings.Row, groupID string) slack.Message {
	blocks := make([]slack.Block, 0)

	title := "📊 Standings 📊"
	if groupID != "" {
		title = fmt.Sprintf("📊 Standings: %s 📊", groupID)
	}
	blocks = append(blocks, slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", title, true, false)))

	if len(rows) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No completed matches yet.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for _, row := range rows {
		rowText := fmt.Sprintf("%d. %s\n> Win %%: %.1f%% (%d-%d) | Diff: %+d",
			row.Position,
			row.TeamID,
			row.WinPercentage*100,
			row.Wins,
			row.Losses,
			row.PointDifferential,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", rowText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}
