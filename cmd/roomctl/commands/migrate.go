package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/noah-isme/peerroom-api/internal/service"
	"github.com/noah-isme/peerroom-api/pkg/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the Postgres schema",
	Long:  `Apply every embedded migration that has not run yet. Requires STORAGE_DRIVER=postgres.`,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if a.backends.DB == nil {
			return errors.New("migrate needs STORAGE_DRIVER=postgres")
		}
		applied, err := database.Migrate(cmd.Context(), a.backends.DB)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			printWarning(cmd.OutOrStdout(), "schema already up to date")
			return nil
		}
		for _, version := range applied {
			printSuccess(cmd.OutOrStdout(), "applied %s", version)
		}
		return nil
	}),
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo rooms and events into empty stores",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		seeder := newSeeder(a)
		result, err := seeder.SeedIfEmpty(cmd.Context())
		if err != nil {
			return err
		}
		if result.Events == 0 && result.Rooms == 0 {
			printWarning(cmd.OutOrStdout(), "stores already hold data, nothing seeded")
			return nil
		}
		printSuccess(cmd.OutOrStdout(), "seeded %d events and %d rooms", result.Events, result.Rooms)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

func newSeeder(a *app) *service.Seeder {
	return service.NewSeeder(a.events, a.backends.Rooms, a.cfg.Rooms.PlaceholderImage, a.logger)
}
