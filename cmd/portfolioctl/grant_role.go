package main

import (
	"context"
	"fmt"
	"time"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/usecase"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var grantEmail string

//nolint:gochecknoglobals // Cobra boilerplate
var grantRoleCmd = &cobra.Command{
	Use:   "grant-role <user-id> <admin|user>",
	Short: "Set a user's role",
	Long: `Set the role of a user, creating the local user record when the user
has not signed in yet. Roles can otherwise only be changed by an admin, so
this is how the first admin is made.`,
	Args: cobra.ExactArgs(2),
	RunE: runGrantRole,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(grantRoleCmd)
	grantRoleCmd.Flags().StringVar(&grantEmail, "email", "", "Email for a user record that does not exist yet")
}

func runGrantRole(cmd *cobra.Command, args []string) (err error) {
	userID, role := args[0], args[1]

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	authUC := usecase.NewAuthUsecase(store.Users)

	user := &domain.User{ID: userID, Email: grantEmail}
	err = authUC.EnsureUserExists(ctx, user)
	if err != nil {
		err = errors.Wrap(err, "failed to load user")
		return err
	}

	err = authUC.AssignRole(operatorContext(ctx), userID, role)
	if err != nil {
		err = errors.Wrapf(err, "failed to grant %s", role)
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", userID, role)
	return err
}
