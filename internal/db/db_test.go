package db

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"migrations/00001_create_sellers.sql",
		"migrations/00002_create_listings.sql",
	}, files)
}

func TestRunMigrations(t *testing.T) {
	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	var gotDir string
	gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
		gotDir = dir
		return nil
	}
	require.NoError(t, RunMigrations(context.Background(), nil, zerolog.Nop()))
	assert.Equal(t, "migrations", gotDir)

	gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
		return errors.New("boom")
	}
	err := RunMigrations(context.Background(), nil, zerolog.Nop())
	assert.ErrorContains(t, err, "run migrations: boom")
}

func TestInitDB_RequiresURL(t *testing.T) {
	_, err := InitDB("", zerolog.Nop())
	assert.Error(t, err)
}
