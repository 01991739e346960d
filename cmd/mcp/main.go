package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/templui/incomeatlas/internal/app"
	"github.com/templui/incomeatlas/internal/config"
	"github.com/templui/incomeatlas/internal/logger"
	"github.com/templui/incomeatlas/internal/mcptools"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	err := run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// stdout carries the MCP protocol
	logger.Init(logger.Options{Dev: cfg.IsDevelopment(), SentryDSN: cfg.SentryDSN, Output: os.Stderr})

	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("initializing app: %w", err)
	}
	defer func() {
		closeErr := a.Close()
		if closeErr != nil {
			slog.Error("failed to close app", "error", closeErr)
		}
	}()

	s := mcptools.NewServer(a.CatalogService, Version)
	return server.ServeStdio(s)
}
