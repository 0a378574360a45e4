package league

import "sync"

// MockStore is a mock implementation of the LeagueStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	UpsertSubjectFunc        func(subject Subject) error
	UpsertSubjectsFunc       func(subjects []Subject) error
	GetSubjectFunc           func(subjectID string) (*Subject, error)
	GetAllSubjectsFunc       func() ([]Subject, error)
	IsKnownSubjectFunc       func(subjectID string) bool
	CreateMatchFunc          func(match *Match) error
	GetMatchFunc             func(matchID string) (*Match, error)
	GetAllMatchesFunc        func() ([]Match, error)
	GetCompletedMatchesFunc  func(groupID string) ([]Match, error)
	CompleteMatchFunc        func(matchID string, scoreA, scoreB int) (*Match, error)
	UpsertEventFunc          func(event EventConfig) error
	GetEventFunc             func(eventID string) (*EventConfig, error)
	GetEventsWithDecayFunc   func() ([]EventConfig, error)

	// Call records
	UpsertSubjectCalls []Subject
	CompleteMatchCalls []CompleteMatchCall
	CreateMatchCalls   []*Match
	ClearCalls         int
}

// CompleteMatchCall holds the arguments for a call to CompleteMatch.
type CompleteMatchCall struct {
	MatchID string
	ScoreA  int
	ScoreB  int
}

// NewMock creates a new mock LeagueStore.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) UpsertSubject(subject Subject) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertSubjectCalls = append(m.UpsertSubjectCalls, subject)
	if m.UpsertSubjectFunc != nil {
		return m.UpsertSubjectFunc(subject)
	}
	return nil
}

func (m *MockStore) UpsertSubjects(subjects []Subject) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertSubjectsFunc != nil {
		return m.UpsertSubjectsFunc(subjects)
	}
	return nil
}

func (m *MockStore) GetSubject(subjectID string) (*Subject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetSubjectFunc != nil {
		return m.GetSubjectFunc(subjectID)
	}
	return &Subject{ID: subjectID}, nil
}

func (m *MockStore) GetAllSubjects() ([]Subject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetAllSubjectsFunc != nil {
		return m.GetAllSubjectsFunc()
	}
	return nil, nil
}

func (m *MockStore) IsKnownSubject(subjectID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IsKnownSubjectFunc != nil {
		return m.IsKnownSubjectFunc(subjectID)
	}
	return true
}

func (m *MockStore) CreateMatch(match *Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateMatchCalls = append(m.CreateMatchCalls, match)
	if m.CreateMatchFunc != nil {
		return m.CreateMatchFunc(match)
	}
	return nil
}

func (m *MockStore) GetMatch(matchID string) (*Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(matchID)
	}
	return &Match{ID: matchID}, nil
}

func (m *MockStore) GetAllMatches() ([]Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetAllMatchesFunc != nil {
		return m.GetAllMatchesFunc()
	}
	return nil, nil
}

func (m *MockStore) GetCompletedMatches(groupID string) ([]Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetCompletedMatchesFunc != nil {
		return m.GetCompletedMatchesFunc(groupID)
	}
	return nil, nil
}

func (m *MockStore) CompleteMatch(matchID string, scoreA, scoreB int) (*Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompleteMatchCalls = append(m.CompleteMatchCalls, CompleteMatchCall{MatchID: matchID, ScoreA: scoreA, ScoreB: scoreB})
	if m.CompleteMatchFunc != nil {
		return m.CompleteMatchFunc(matchID, scoreA, scoreB)
	}
	return &Match{ID: matchID, ScoreA: &scoreA, ScoreB: &scoreB, Status: StatusCompleted}, nil
}

func (m *MockStore) UpsertEvent(event EventConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertEventFunc != nil {
		return m.UpsertEventFunc(event)
	}
	return nil
}

func (m *MockStore) GetEvent(eventID string) (*EventConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetEventFunc != nil {
		return m.GetEventFunc(eventID)
	}
	return &EventConfig{ID: eventID, KFactor: 20}, nil
}

func (m *MockStore) GetEventsWithDecay() ([]EventConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetEventsWithDecayFunc != nil {
		return m.GetEventsWithDecayFunc()
	}
	return nil, nil
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
}
