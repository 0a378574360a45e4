package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncTransactionsApplied()
	IncMatchesRated()
	ObserveRatingDuration(duration float64)
	IncDecayRuns()
	IncDecaySubjectFailures()
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}
