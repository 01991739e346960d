// Package server runs the HTTP API until its context is cancelled.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/templui/incomeatlas/internal/app"
	"github.com/templui/incomeatlas/internal/routes"
)

// ShutdownTimeout bounds how long in-flight requests may take to finish.
const ShutdownTimeout = 30 * time.Second

func New(a *app.App) *http.Server {
	return &http.Server{
		Addr:              ":" + a.Cfg.Port,
		Handler:           routes.SetupRoutes(a),
		ReadTimeout:       a.Cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      a.Cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, a *app.App) error {
	srv := New(a)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", a.Cfg.Port, "env", a.Cfg.AppEnv, "url", "http://localhost:"+a.Cfg.Port)
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	if err != nil {
		slog.Error("server forced to shutdown", "error", err)
		return err
	}

	slog.Info("server exited gracefully")
	return nil
}
