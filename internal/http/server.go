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

func NewServer(store league.LeagueStore, l ledger.Ledger, updater rating.Updater, board leaderboard.Service, decayRunner *decay.Runner, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, proc *processor.Processor, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Ledger:         l,
		Rating:         updater,
		Leaderboard:    board,
		Decay:          decayRunner,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Processor:      proc,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/clear", Chain(s.ClearStoreHandler(), paramsMiddleware))
	s.Router.Handle("/subjects", Chain(s.ListSubjectsHandler(), paramsMiddleware))
	s.Router.Handle("/subjects/upsert", Chain(s.UpsertSubjectHandler(), paramsMiddleware))
	s.Router.Handle("/events/upsert", Chain(s.UpsertEventHandler(), paramsMiddleware))
	s.Router.Handle("/matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("/matches/create", Chain(s.CreateMatchHandler(), paramsMiddleware))
	s.Router.Handle("/matches/complete", Chain(s.CompleteMatchHandler(), paramsMiddleware))
	s.Router.Handle("/rate", Chain(s.RateMatchHandler(), paramsMiddleware))
	s.Router.Handle("/rate/reverse", Chain(s.ReverseRatingHandler(), paramsMiddleware))
	s.Router.Handle("/balance", Chain(s.BalanceHandler(), paramsMiddleware))
	s.Router.Handle("/transactions", Chain(s.TransactionsHandler(), paramsMiddleware))
	s.Router.Handle("/replay", Chain(s.ReplayHandler(), paramsMiddleware))
	s.Router.Handle("/adjust", Chain(s.AdjustHandler(), paramsMiddleware))
	s.Router.Handle("/standings", Chain(s.StandingsHandler(), paramsMiddleware))
	s.Router.Handle("/leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/tier", Chain(s.TierHandler(), paramsMiddleware))
	s.Router.Handle("/decay/run", Chain(s.RunDecayHandler(), paramsMiddleware))
	s.Router.Handle("/events/match-completed", Chain(s.MatchCompletedHandler(), paramsMiddleware))
	s.Router.Handle("/events/award-rp", Chain(s.AwardRPHandler(), paramsMiddleware))
	s.Router.Handle("/slack/command/leaderboard", Chain(s.LeaderboardCommandHandler(), paramsMiddleware))
	s.Router.Handle("/slack/command/standings", Chain(s.StandingsCommandHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
