package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/templui/incomeatlas/internal/app"
	"github.com/templui/incomeatlas/internal/config"
	"github.com/templui/incomeatlas/internal/logger"
	"github.com/templui/incomeatlas/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Init(logger.Options{Dev: cfg.IsDevelopment(), SentryDSN: cfg.SentryDSN})

	app, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	defer func() {
		closeErr := app.Close()
		if closeErr != nil {
			slog.Error("failed to close app", "error", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = server.Run(ctx, app)
	if err != nil {
		slog.Error("server failed", "error", err)
		stop()
		_ = app.Close()
		os.Exit(1)
	}
}
