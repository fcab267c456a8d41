package main

import (
	"fmt"

	"portfolio-backend/config"
	"portfolio-backend/internal/repository/postgres"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long: `Apply the embedded migrations to DATABASE_URL. Already applied
migrations are skipped, so this is safe to run on every deploy.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) (err error) {
	var cfg *config.Config
	cfg, err = config.LoadConfig()
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return err
	}
	if cfg.StorageDriver != config.StorageDriverPostgres {
		err = fmt.Errorf("migrate needs STORAGE_DRIVER=%s, got %s", config.StorageDriverPostgres, cfg.StorageDriver)
		return err
	}

	err = postgres.RunMigrations(cfg.DBUrl)
	if err != nil {
		err = errors.Wrap(err, "migration failed")
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
	return err
}
