package main

import (
	"github.com/sirupsen/logrus" // Logging

	"clubcorra/internal/config"   // Configuration
	dbpkg "clubcorra/internal/db" // Database setup
)

// Main entry point for migration and seeding
func main() {
	cfg := config.LoadConfig() // Load configuration

	db, err := dbpkg.Open(cfg.DB, cfg.IsProd)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	if err := dbpkg.Migrate(db); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
	if err := dbpkg.Seed(db, cfg); err != nil {
		logrus.Fatalf("seeding failed: %v", err)
	}
	logrus.WithField("driver", cfg.DB.Driver).Info("Database migrated and seeded")
}
