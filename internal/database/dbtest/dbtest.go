// Package dbtest provisions throwaway Postgres databases for integration tests.
package dbtest

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"newsletter-go/internal/config"
	"newsletter-go/internal/database"
)

// NewMigratedDatabase creates a uniquely named database on the server described
// by the DATABASE_* environment, migrates it and returns an open pool. Tests
// are skipped when DATABASE_HOST is unset.
func NewMigratedDatabase(t *testing.T) (*sql.DB, config.Database) {
	t.Helper()

	if os.Getenv("DATABASE_HOST") == "" {
		t.Skip("DATABASE_HOST not set; skipping Postgres integration test")
	}

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	dbCfg := cfg.Database
	dbCfg.DatabaseName = uuid.NewString()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := database.CreateDatabase(ctx, dbCfg); err != nil {
		t.Fatalf("create database: %v", err)
	}
	if err := database.Migrate(dbCfg); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	db, err := database.Open(ctx, dbCfg)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db, dbCfg
}
