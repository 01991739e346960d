package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/templui/incomeatlas/internal/app"
	"github.com/templui/incomeatlas/internal/config"
	"github.com/templui/incomeatlas/internal/logger"
	"github.com/templui/incomeatlas/internal/server"
)

func ServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}

			logger.Init(logger.Options{Dev: cfg.IsDevelopment(), SentryDSN: cfg.SentryDSN})

			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer func() {
				closeErr := a.Close()
				if closeErr != nil {
					slog.Error("failed to close app", "error", closeErr)
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.Run(ctx, a)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "override PORT")
	return cmd
}
