package processor

import (
	"github.com/proamhub/rankings/internal/ledger"
	"github.com/proamhub/rankings/internal/metrics"
	"github.com/proamhub/rankings/internal/pubsub"
	"github.com/proamhub/rankings/internal/rating"
)

// Processor handles the business logic of advancing a reported match result
// through rating and RP award.
type Processor struct {
	store    Store
	ledger   ledger.Ledger
	rating   rating.Updater
	pubsub   pubsub.PubSubClient
	notifier Notifier
	metrics  metrics.Metrics
}

// MatchCompleted is the payload published when a match result is reported.
type MatchCompleted struct {
	MatchID string `msgpack:"match_id" json:"match_id"`
	ScoreA  int    `msgpack:"score_a" json:"score_a"`
	ScoreB  int    `msgpack:"score_b" json:"score_b"`
}

// AwardRP is the payload published after a match has been rated, consumed by
// the RP award handler.
type AwardRP struct {
	MatchID string `msgpack:"match_id" json:"match_id"`
}
