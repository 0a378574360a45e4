package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	TransactionsApplied  prometheus.Counter
	MatchesRated         prometheus.Counter
	RatingDuration       prometheus.Histogram
	DecayRuns            prometheus.Counter
	DecaySubjectFailures prometheus.Counter
	SlackNotifSent       prometheus.Counter
	SlackNotifFailed     prometheus.Counter
	StartupTimeSeconds   prometheus.Gauge
}
