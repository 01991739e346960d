package db

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

func Init(driver, connection string) (*sqlx.DB, error) {
	// SQLite: create data directory if needed
	if driver == DriverSQLite && !strings.Contains(connection, ":memory:") {
		path := strings.TrimPrefix(connection, "file:")
		if i := strings.IndexByte(path, '?'); i >= 0 {
			path = path[:i]
		}
		err := os.MkdirAll(filepath.Dir(path), 0755)
		if err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	// Pragmas go in the DSN so every pooled connection gets them. busy_timeout
	// makes writers queue on the lock instead of failing with SQLITE_BUSY.
	if driver == DriverSQLite {
		connection = withPragma(connection, "busy_timeout", "5000")
		connection = withPragma(connection, "foreign_keys", "1")
	}

	db, err := sqlx.Connect(driver, connection)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	slog.Info("database connected", "driver", driver)

	return db, nil
}

// Ping reports whether the database answers within the context deadline.
func Ping(ctx context.Context, db *sqlx.DB) error {
	return db.PingContext(ctx)
}

func Close(db *sqlx.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}

func withPragma(dsn, name, value string) string {
	if strings.Contains(dsn, name) {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=" + name + "(" + value + ")"
}
