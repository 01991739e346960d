package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/templui/incomeatlas/internal/db"
	"github.com/templui/incomeatlas/internal/model"
	"github.com/templui/incomeatlas/internal/repository"
	"github.com/templui/incomeatlas/internal/seed"
)

const testUser = "user_1700000000000_abc123"

type testServices struct {
	db        *sqlx.DB
	catalog   *CatalogService
	progress  *ProgressService
	bookmarks *BookmarkService
	seeded    []*model.Strategy
}

// setupServices wires the services over a migrated, seeded sqlite database.
// The progress clock is frozen at 2025-03-04T05:06:07.089Z.
func setupServices(t testing.TB) *testServices {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)"
	database, err := db.Init(db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(database) })
	require.NoError(t, db.RunMigrations(database.DB, db.DriverSQLite))

	strategyRepo := repository.NewStrategyRepository(database)
	catalog := NewCatalogService(strategyRepo)
	progress := NewProgressService(repository.NewProgressRepository(database), strategyRepo)
	progress.now = func() time.Time {
		return time.Date(2025, 3, 4, 5, 6, 7, 89_000_000, time.UTC)
	}
	bookmarks := NewBookmarkService(repository.NewBookmarkRepository(database), strategyRepo)

	strategies, err := seed.Strategies()
	require.NoError(t, err)
	require.NoError(t, catalog.Seed(context.Background(), strategies, false))

	return &testServices{
		db:        database,
		catalog:   catalog,
		progress:  progress,
		bookmarks: bookmarks,
		seeded:    strategies,
	}
}

const frozenNow = "2025-03-04T05:06:07.089Z"

func ids(strategies []*model.Strategy) []string {
	out := make([]string, 0, len(strategies))
	for _, s := range strategies {
		out = append(out, s.ID)
	}
	return out
}
