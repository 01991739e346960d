package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/templui/incomeatlas/internal/db"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, err := setup()
			if err != nil {
				return err
			}
			defer db.Close(database)

			return db.RunMigrations(database.DB, cfg.DBDriver)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, err := setup()
			if err != nil {
				return err
			}
			defer db.Close(database)

			return db.MigrateDown(database.DB, cfg.DBDriver)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, err := setup()
			if err != nil {
				return err
			}
			defer db.Close(database)

			version, err := db.SchemaVersion(database.DB, cfg.DBDriver)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
			return nil
		},
	})

	return cmd
}
