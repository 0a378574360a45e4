package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	Slack         SlackConfig
	Turso         TursoConfig
	ProjectID     string
	Decay         DecayConfig
}

type SlackConfig struct {
	Token     string
	ChannelID string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

type DecayConfig struct {
	// Interval between scheduled decay runs.
	Interval time.Duration
	// SubjectTimeout bounds how long a single subject's decay may take.
	SubjectTimeout time.Duration
}
