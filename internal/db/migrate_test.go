package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunMigrationsCreatesConstrainedSchema(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "data", "test.db") + "?_pragma=foreign_keys(1)"
	database, err := Init(DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(database) })

	require.NoError(t, RunMigrations(database.DB, DriverSQLite))
	// Re-running is a no-op.
	require.NoError(t, RunMigrations(database.DB, DriverSQLite))

	_, err = database.Exec(`INSERT INTO strategies (id, title, description, category, potential_income, time_to_start, difficulty, initial_capital)
		VALUES ('s1', 't', 'd', 'Investment', 1, '1 month', 'Beginner', 0)`)
	require.NoError(t, err)

	_, err = database.Exec(`INSERT INTO strategies (id, title, description, category, potential_income, time_to_start, difficulty, initial_capital)
		VALUES ('s2', 't', 'd', 'Lottery', 1, '1 month', 'Beginner', 0)`)
	require.Error(t, err, "category check constraint")

	now := time.Now()
	insert := `INSERT INTO user_bookmarks (id, user_id, strategy_id, bookmarked_at) VALUES ($1, $2, $3, $4)`
	_, err = database.Exec(insert, "b1", "user_1_a", "s1", now)
	require.NoError(t, err)
	_, err = database.Exec(insert, "b2", "user_1_a", "s1", now)
	require.Error(t, err, "unique (user_id, strategy_id)")

	_, err = database.Exec(insert, "b3", "user_1_a", "missing", now)
	require.Error(t, err, "foreign key")
}

func TestMigrateDown(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "test.db")
	database, err := Init(DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(database) })

	require.NoError(t, RunMigrations(database.DB, DriverSQLite))
	version, err := SchemaVersion(database.DB, DriverSQLite)
	require.NoError(t, err)
	require.EqualValues(t, 3, version)

	require.NoError(t, MigrateDown(database.DB, DriverSQLite))
	version, err = SchemaVersion(database.DB, DriverSQLite)
	require.NoError(t, err)
	require.EqualValues(t, 2, version)

	_, err = database.Exec(`SELECT COUNT(*) FROM user_bookmarks`)
	require.Error(t, err)

	_, err = database.Exec(`SELECT COUNT(*) FROM user_progress`)
	require.NoError(t, err)
}
