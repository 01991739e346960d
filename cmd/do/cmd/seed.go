package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/templui/incomeatlas/internal/db"
	"github.com/templui/incomeatlas/internal/repository"
	"github.com/templui/incomeatlas/internal/seed"
	"github.com/templui/incomeatlas/internal/service"
)

func SeedCmd() *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the shipped strategy catalog",
		Long: "Upserts the shipped strategies by id. Running it twice is harmless.\n" +
			"With --reset the catalog is deleted first, which also removes every\n" +
			"progress and bookmark row.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, err := setup()
			if err != nil {
				return err
			}
			defer db.Close(database)

			err = db.RunMigrations(database.DB, cfg.DBDriver)
			if err != nil {
				return err
			}

			strategies, err := seed.Strategies()
			if err != nil {
				return err
			}

			catalog := service.NewCatalogService(repository.NewStrategyRepository(database))
			err = catalog.Seed(cmd.Context(), strategies, reset)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d strategies\n", len(strategies))
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "delete the catalog (and all user rows) before seeding")
	return cmd
}
