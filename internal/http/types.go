package http

import (
	"net/http"

	"github.com/proamhub/rankings/internal/config"
	"github.com/proamhub/rankings/internal/decay"
	"github.com/proamhub/rankings/internal/leaderboard"
	"github.com/proamhub/rankings/internal/league"
	"github.com/proamhub/rankings/internal/ledger"
	"github.com/proamhub/rankings/internal/metrics"
	"github.com/proamhub/rankings/internal/notifier"
	"github.com/proamhub/rankings/internal/processor"
	"github.com/proamhub/rankings/internal/pubsub"
	"github.com/proamhub/rankings/internal/rating"
)

type Server struct {
	Store          league.LeagueStore
	Ledger         ledger.Ledger
	Rating         rating.Updater
	Leaderboard    leaderboard.Service
	Decay          *decay.Runner
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Processor      *processor.Processor
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
