package main

import (
	"context"
	"os"

	"portfolio-backend/config"
	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/repository"
	"portfolio-backend/pkg/logger"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var verbose bool

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "portfolioctl",
	Short: "Operator tasks for the portfolio backend",
	Long: `portfolioctl reads the same environment as the API server (DATABASE_URL,
STORAGE_DRIVER, ...) and works directly on its store.

Typical first deployment:
  portfolioctl migrate
  portfolioctl grant-role <supabase-user-id> admin --email ops@example.com`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		env := "production"
		if verbose {
			env = "development"
		}
		logger.Init(env)
	},
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}

func openStorage(ctx context.Context) (store *repository.Storage, err error) {
	var cfg *config.Config
	cfg, err = config.LoadConfig()
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return store, err
	}

	store, err = repository.Open(ctx, cfg)
	if err != nil {
		err = errors.Wrap(err, "failed to open storage")
		return store, err
	}
	return store, err
}

// operatorContext acts as an admin so usecase authorization passes.
func operatorContext(ctx context.Context) context.Context {
	ctx = context.WithValue(ctx, domain.KeyUserID, "portfolioctl")
	return context.WithValue(ctx, domain.KeyUserRole, domain.RoleAdmin)
}
