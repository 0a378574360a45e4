package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		TransactionsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rankings_rp_transactions_applied_total",
			Help: "The total number of RP transactions written to the ledger.",
		}),
		MatchesRated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rankings_matches_rated_total",
			Help: "The total number of matches rated by the Elo updater.",
		}),
		RatingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rankings_match_rating_duration_seconds",
			Help:    "The duration of individual match rating, end to end.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		DecayRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rankings_decay_runs_total",
			Help: "The total number of scheduled decay runs.",
		}),
		DecaySubjectFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rankings_decay_subject_failures_total",
			Help: "The total number of subjects a decay run failed to process.",
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rankings_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rankings_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rankings_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.TransactionsApplied,
		s.MatchesRated,
		s.RatingDuration,
		s.DecayRuns,
		s.DecaySubjectFailures,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncTransactionsApplied() {
	s.TransactionsApplied.Inc()
}

func (s *Service) IncMatchesRated() {
	s.MatchesRated.Inc()
}

func (s *Service) ObserveRatingDuration(duration float64) {
	s.RatingDuration.Observe(duration)
}

func (s *Service) IncDecayRuns() {
	s.DecayRuns.Inc()
}

func (s *Service) IncDecaySubjectFailures() {
	s.DecaySubjectFailures.Inc()
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
