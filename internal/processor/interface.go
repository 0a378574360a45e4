package processor

import (
	"github.com/proamhub/rankings/internal/league"
	"github.com/proamhub/rankings/internal/notifier"
)

// Store defines the database operations required by the processor.
type Store interface {
	GetMatch(matchID string) (*league.Match, error)
	CompleteMatch(matchID string, scoreA, scoreB int) (*league.Match, error)
	GetEvent(eventID string) (*league.EventConfig, error)
}

// Notifier defines the notification operations required by the processor.
// This is now an alias for the main notifier interface for decoupling.
type Notifier interface {
	notifier.Notifier
}
