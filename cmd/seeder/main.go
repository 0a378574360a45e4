package main

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/proamhub/rankings/internal/database"
	"github.com/proamhub/rankings/internal/league"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{
		"DB_NAME":        "rankings.db",
		"MIGRATIONS_DIR": "./migrations",
	}
	for key := range config {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		}
	}
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], "", "", cfg["MIGRATIONS_DIR"])
	if err != nil {
		log.Fatalf("Failed to open database: %s", err)
	}
	defer teardown()

	store := league.New(db)

	subjects := []league.Subject{
		{ID: "team-north", Kind: league.KindTeam, Name: "Northside Flyers", Region: "na"},
		{ID: "team-south", Kind: league.KindTeam, Name: "Southside Kings", Region: "na"},
		{ID: "team-east", Kind: league.KindTeam, Name: "East End Ballers", Region: "eu"},
		{ID: "team-west", Kind: league.KindTeam, Name: "Westgate Union", Region: "eu"},
	}
	if err := store.UpsertSubjects(subjects); err != nil {
		log.Fatalf("Failed to insert subjects: %s", err)
	}
	log.Info("Ensured demo subjects exist.", "count", len(subjects))

	decayDays := 14
	event := league.EventConfig{
		ID:           "season-demo",
		Name:         "Demo Season",
		Tier:         "regional",
		DecayDays:    &decayDays,
		DecayPercent: 10,
		MaxRP:        2000,
		WinAward:     50,
		LossAward:    10,
		KFactor:      20,
	}
	if err := store.UpsertEvent(event); err != nil {
		log.Fatalf("Failed to insert event: %s", err)
	}
	log.Info("Ensured demo event exists.", "eventID", event.ID)

	// A round-robin of scheduled matches.
	for i := 0; i < len(subjects); i++ {
		for j := i + 1; j < len(subjects); j++ {
			match := &league.Match{
				EventID: event.ID,
				GroupID: "group-demo",
				Stage:   "round_robin",
				TeamA:   subjects[i].ID,
				TeamB:   subjects[j].ID,
			}
			if err := store.CreateMatch(match); err != nil {
				log.Fatalf("Failed to insert match: %s", err)
			}
		}
	}
	log.Info("Created round-robin matches.", "groupID", "group-demo")

	const batchSize = 100
	const numTransactions = 10000

	log.Info("Preparing to insert dummy transactions...", "total", numTransactions, "batch_size", batchSize)
	startTime := time.Now()

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("Failed to begin transaction: %s", err)
	}

	valueStrings := make([]string, 0, batchSize)
	valueArgs := make([]interface{}, 0, batchSize*7)
	totals := make(map[string]float64)

	for i := 0; i < numTransactions; i++ {
		subject := subjects[rand.Intn(len(subjects))]
		amount := float64(rand.Intn(50) + 1)
		createdAt := time.Now().Add(-time.Duration(rand.Intn(365*24)) * time.Hour)
		totals[subject.ID] += amount

		valueStrings = append(valueStrings, "(?, ?, ?, ?, ?, ?, ?)")
		valueArgs = append(valueArgs,
			uuid.NewString(),
			subject.ID,
			amount,
			"event_award",
			event.ID,
			"seeded award",
			createdAt.Unix(),
		)

		if (i+1)%batchSize == 0 || (i+1) == numTransactions {
			stmt := fmt.Sprintf(`
				INSERT INTO rp_transactions (id, subject_id, amount, type, event_id, reason, created_at)
				VALUES %s;`, strings.Join(valueStrings, ","))

			_, err := tx.Exec(stmt, valueArgs...)
			if err != nil {
				tx.Rollback()
				log.Fatalf("Failed to execute batch insert: %s", err)
			}

			// Reset for the next batch
			valueStrings = make([]string, 0, batchSize)
			valueArgs = make([]interface{}, 0, batchSize*7)
			log.Info("Inserted batch", "completed", i+1, "total", numTransactions)
		}
	}

	// Sync the cached projections with the seeded history.
	for subjectID, total := range totals {
		if _, err := tx.Exec("UPDATE subjects SET current_rp = ?, peak_rp = ? WHERE id = ?", total, total, subjectID); err != nil {
			tx.Rollback()
			log.Fatalf("Failed to sync subject projection: %s", err)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit transaction: %s", err)
	}

	duration := time.Since(startTime)
	log.Info("Successfully seeded the database.", "duration", duration)
}
