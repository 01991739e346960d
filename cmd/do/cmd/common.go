package cmd

import (
	"github.com/jmoiron/sqlx"
	"github.com/templui/incomeatlas/internal/config"
	"github.com/templui/incomeatlas/internal/db"
	"github.com/templui/incomeatlas/internal/logger"
)

// setup loads config, initializes logging and opens the database without
// migrating it.
func setup() (*config.Config, *sqlx.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger.Init(logger.Options{Dev: cfg.IsDevelopment(), SentryDSN: cfg.SentryDSN})

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, nil, err
	}

	return cfg, database, nil
}
