package usecase

import (
	"context"

	"portfolio-backend/internal/domain"
	"portfolio-backend/pkg/apperror"
)

// Caller identity is whatever the auth middleware stored after re-reading the
// user record; nothing from the request body is trusted here.

func currentUserID(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(domain.KeyUserID).(string)
	if !ok || userID == "" {
		return "", apperror.Unauthorized("User not authenticated")
	}
	return userID, nil
}

func currentUserEmail(ctx context.Context) string {
	email, _ := ctx.Value(domain.KeyUserEmail).(string)
	return email
}

func isAdmin(ctx context.Context) bool {
	role, ok := ctx.Value(domain.KeyUserRole).(string)
	return ok && role == domain.RoleAdmin
}

func requireAdmin(ctx context.Context) error {
	if _, err := currentUserID(ctx); err != nil {
		return err
	}
	if !isAdmin(ctx) {
		return apperror.Forbidden("Admin access required")
	}
	return nil
}

// requireOwner fails unless the authenticated caller is userID.
func requireOwner(ctx context.Context, userID string, action string) (string, error) {
	ctxUserID, err := currentUserID(ctx)
	if err != nil {
		return "", err
	}
	if ctxUserID != userID {
		return "", apperror.Forbidden("You can only " + action + " your own portfolio")
	}
	return ctxUserID, nil
}
