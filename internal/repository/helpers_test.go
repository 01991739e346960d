package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/templui/incomeatlas/internal/db"
	"github.com/templui/incomeatlas/internal/model"
	"github.com/templui/incomeatlas/internal/seed"
)

// setupTestDB opens a migrated sqlite database in a temp dir.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)"
	database, err := db.Init(db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(database) })

	require.NoError(t, db.RunMigrations(database.DB, db.DriverSQLite))
	return database
}

// setupSeededDB is setupTestDB plus the 20 shipped strategies.
func setupSeededDB(t *testing.T) (*sqlx.DB, []*model.Strategy) {
	t.Helper()

	database := setupTestDB(t)
	strategies, err := seed.Strategies()
	require.NoError(t, err)

	repo := NewStrategyRepository(database)
	for _, s := range strategies {
		require.NoError(t, repo.Upsert(context.Background(), s))
	}
	return database, strategies
}

func ids(strategies []*model.Strategy) []string {
	out := make([]string, 0, len(strategies))
	for _, s := range strategies {
		out = append(out, s.ID)
	}
	return out
}
