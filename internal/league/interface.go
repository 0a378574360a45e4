package league

// LeagueStore defines the interface for interacting with subjects, matches
// and event configuration.
type LeagueStore interface {
	UpsertSubject(subject Subject) error
	UpsertSubjects(subjects []Subject) error
	GetSubject(subjectID string) (*Subject, error)
	GetAllSubjects() ([]Subject, error)
	IsKnownSubject(subjectID string) bool

	CreateMatch(match *Match) error
	GetMatch(matchID string) (*Match, error)
	GetAllMatches() ([]Match, error)
	GetCompletedMatches(groupID string) ([]Match, error)
	CompleteMatch(matchID string, scoreA, scoreB int) (*Match, error)

	UpsertEvent(event EventConfig) error
	GetEvent(eventID string) (*EventConfig, error)
	GetEventsWithDecay() ([]EventConfig, error)

	Clear()
}
