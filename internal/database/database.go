// Package database owns the Postgres connection pool and the schema
// migrations applied to it at startup.
package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lib/pq"

	"newsletter-go/internal/config"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Open connects a pool to the configured database and verifies it with a ping.
func Open(ctx context.Context, cfg config.Database) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate applies every pending up migration. It uses its own connection,
// closed before returning.
func Migrate(cfg config.Database) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// CreateDatabase issues CREATE DATABASE for cfg.DatabaseName against the
// server's maintenance database.
func CreateDatabase(ctx context.Context, cfg config.Database) error {
	admin, err := sql.Open("postgres", cfg.ConnectionStringWithoutDB())
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	defer admin.Close()

	if _, err := admin.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(cfg.DatabaseName)); err != nil {
		return fmt.Errorf("create database %s: %w", cfg.DatabaseName, err)
	}
	return nil
}

// MigrationFS exposes the embedded migration files.
func MigrationFS() fs.FS {
	return migrationFS
}
