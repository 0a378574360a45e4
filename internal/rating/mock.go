package rating

import "sync"

// MockUpdater is a mock implementation of the Updater interface for testing.
type MockUpdater struct {
	mu sync.Mutex

	RateMatchFunc     func(matchID string) (*Result, error)
	ReverseRatingFunc func(matchID string) error

	RateMatchCalls     []string
	ReverseRatingCalls []string
}

// NewMock creates a new mock Updater.
func NewMock() *MockUpdater {
	return &MockUpdater{}
}

func (m *MockUpdater) RateMatch(matchID string) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RateMatchCalls = append(m.RateMatchCalls, matchID)
	if m.RateMatchFunc != nil {
		return m.RateMatchFunc(matchID)
	}
	return &Result{MatchID: matchID}, nil
}

func (m *MockUpdater) ReverseRating(matchID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReverseRatingCalls = append(m.ReverseRatingCalls, matchID)
	if m.ReverseRatingFunc != nil {
		return m.ReverseRatingFunc(matchID)
	}
	return nil
}
