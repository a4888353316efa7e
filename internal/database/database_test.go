package database_test

import (
	"context"
	"io/fs"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsletter-go/internal/config"
	"newsletter-go/internal/database"
	"newsletter-go/internal/database/dbtest"
)

func TestMigrationsCreateSubscriptionsTable(t *testing.T) {
	db, cfg := dbtest.NewMigratedDatabase(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := db.ExecContext(ctx,
		`INSERT INTO subscriptions (id, email, name, subscribed_at) VALUES ($1, $2, $3, $4)`,
		uuid.New(), "a@b.c", "a", time.Now().UTC())
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT count(*) FROM subscriptions`).Scan(&count))
	assert.Equal(t, 1, count)

	// A second run has nothing to apply.
	assert.NoError(t, database.Migrate(cfg))
}

func TestOpenFailsWhenServerUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := database.Open(ctx, unreachable())
	assert.Error(t, err)
}

func TestMigrationFilesArePaired(t *testing.T) {
	ups, err := fs.Glob(database.MigrationFS(), "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(database.MigrationFS(), "migrations/*.down.sql")
	require.NoError(t, err)

	assert.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}

func unreachable() config.Database {
	return config.Database{
		Host:         "127.0.0.1",
		Port:         1,
		Username:     "postgres",
		Password:     "password",
		DatabaseName: "newsletter",
		SSLMode:      "disable",
	}
}
