package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/usecase"
	"portfolio-backend/pkg/validation"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var requestsStatus string

//nolint:gochecknoglobals // Cobra boilerplate
var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "List category requests",
	Long: `List category requests newest first.

Example:
  portfolioctl requests
  portfolioctl requests --status approved`,
	Args: cobra.NoArgs,
	RunE: runRequests,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(requestsCmd)
	requestsCmd.Flags().StringVar(&requestsStatus, "status", domain.RequestStatusPending, "PENDING, APPROVED, REJECTED or empty for all")
}

func runRequests(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	categoryUC := usecase.NewCategoryUsecase(store.Categories, store.Requests, validation.New())

	var requests []domain.CategoryRequest
	requests, err = categoryUC.ListRequests(operatorContext(ctx), domain.RequestFilter{Status: requestsStatus})
	if err != nil {
		err = errors.Wrap(err, "failed to list requests")
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tSTATUS\tCATEGORY\tSKILLS\tREQUESTED BY")
	for _, r := range requests {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.CreatedAt.Format(time.DateTime), r.Status, r.CategoryName,
			strings.Join(r.SuggestedSkills, ", "), r.UserEmail)
	}
	err = w.Flush()
	return err
}
