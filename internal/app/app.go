package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/templui/incomeatlas/internal/config"
	"github.com/templui/incomeatlas/internal/db"
	"github.com/templui/incomeatlas/internal/middleware"
	"github.com/templui/incomeatlas/internal/repository"
	"github.com/templui/incomeatlas/internal/seed"
	"github.com/templui/incomeatlas/internal/service"
	"github.com/templui/incomeatlas/internal/session"
)

type App struct {
	Cfg             *config.Config
	DB              *sqlx.DB
	CatalogService  *service.CatalogService
	ProgressService *service.ProgressService
	BookmarkService *service.BookmarkService
	Sessions        *session.Manager
	Registry        *prometheus.Registry
	Limiter         *middleware.RateLimiter
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = db.Close(database)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Repositories
	strategyRepository := repository.NewStrategyRepository(database)
	progressRepository := repository.NewProgressRepository(database)
	bookmarkRepository := repository.NewBookmarkRepository(database)

	// Services
	catalogService := service.NewCatalogService(strategyRepository)
	progressService := service.NewProgressService(progressRepository, strategyRepository)
	bookmarkService := service.NewBookmarkService(bookmarkRepository, strategyRepository)

	if cfg.SeedOnStart {
		strategies, err := seed.Strategies()
		if err == nil {
			err = catalogService.Seed(context.Background(), strategies, false)
		}
		if err != nil {
			_ = db.Close(database)
			return nil, fmt.Errorf("failed to seed catalog: %w", err)
		}
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &App{
		Cfg:             cfg,
		DB:              database,
		CatalogService:  catalogService,
		ProgressService: progressService,
		BookmarkService: bookmarkService,
		Sessions:        session.NewManager(cfg.SessionSecret, cfg.SessionMaxAge, cfg.IsProduction()),
		Registry:        registry,
		Limiter:         middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}, nil
}

func (a *App) Close() error {
	if a.Limiter != nil {
		a.Limiter.Stop()
	}
	return db.Close(a.DB)
}
