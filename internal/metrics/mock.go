package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                   sync.Mutex
	transactionsApplied  int
	matchesRated         int
	ratingDurations      []float64
	decayRuns            int
	decaySubjectFailures int
	slackNotifSent       int
	slackNotifFailed     int
	startupTime          float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		ratingDurations: make([]float64, 0),
	}
}

func (m *Mock) IncTransactionsApplied() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactionsApplied++
}

func (m *Mock) IncMatchesRated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesRated++
}

func (m *Mock) ObserveRatingDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratingDurations = append(m.ratingDurations, duration)
}

func (m *Mock) IncDecayRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decayRuns++
}

func (m *Mock) IncDecaySubjectFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decaySubjectFailures++
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// TransactionsApplied returns the number of times IncTransactionsApplied was called.
func (m *Mock) TransactionsApplied() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transactionsApplied
}

// MatchesRated returns the number of times IncMatchesRated was called.
func (m *Mock) MatchesRated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesRated
}

// DecayRuns returns the number of times IncDecayRuns was called.
func (m *Mock) DecayRuns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.decayRuns
}

// DecaySubjectFailures returns the number of times IncDecaySubjectFailures was called.
func (m *Mock) DecaySubjectFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.decaySubjectFailures
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
