package main

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"zust-route-service/internal/adapters/repositories"
	"zust-route-service/internal/config"
	"zust-route-service/internal/platform/db"
	"zust-route-service/internal/platform/obs"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found (using environment variables)")
	}
	if err := obs.ConfigureLogger(config.Get("LOG_LEVEL", "info"), config.Get("LOG_FORMAT", "text")); err != nil {
		log.Fatal(err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/zones.json")
	if err := initAndSeed(db, seedPath); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(db *sql.DB, seedPath string) error {
	log.Info("Initializing database schema...")
	if err := repositories.InitSchema(db); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Info("Schema ready.")

	log.WithField("seed", seedPath).Info("Seeding database...")
	if err := repositories.SeedFromJSON(db, seedPath); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	log.Info("Seeding complete.")

	return nil
}
