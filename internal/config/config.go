package config

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}

	getEnvDefault := func(key, fallback string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		return fallback
	}

	decayInterval, err := time.ParseDuration(getEnvDefault("DECAY_INTERVAL", "24h"))
	if err != nil {
		log.Fatalf("Error: invalid DECAY_INTERVAL: %s", err)
	}
	subjectTimeout, err := time.ParseDuration(getEnvDefault("DECAY_SUBJECT_TIMEOUT", "5s"))
	if err != nil {
		log.Fatalf("Error: invalid DECAY_SUBJECT_TIMEOUT: %s", err)
	}

	cfg := Config{
		DBName:        getEnv("DB_NAME"),
		MigrationsDir: getEnvDefault("MIGRATIONS_DIR", "./migrations"),
		Port:          getEnv("PORT"),
		Slack: SlackConfig{
			Token:     getEnv("SLACK_BOT_TOKEN"),
			ChannelID: getEnv("SLACK_CHANNEL_ID"),
		},
		Turso: TursoConfig{
			PrimaryURL: getEnvDefault("TURSO_PRIMARY_URL", ""),
			AuthToken:  getEnvDefault("TURSO_AUTH_TOKEN", ""),
		},
		ProjectID: getEnv("GCP_PROJECT"),
		Decay: DecayConfig{
			Interval:       decayInterval,
			SubjectTimeout: subjectTimeout,
		},
	}
	return cfg
}
