package usecase

import (
	"context"
	"fmt"
	"time"

	"portfolio-backend/internal/domain"
	"portfolio-backend/pkg/apperror"
)

type authUsecase struct {
	userRepo domain.UserRepository
}

func NewAuthUsecase(userRepo domain.UserRepository) domain.AuthUsecase {
	return &authUsecase{userRepo: userRepo}
}

// EnsureUserExists creates the local user record on first sight. The role of
// an existing user is never taken from the caller.
func (u *authUsecase) EnsureUserExists(ctx context.Context, user *domain.User) error {
	existing, err := u.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		return apperror.Persistence("Failed to load user", err)
	}
	if existing != nil {
		if user.Email != "" && existing.Email != user.Email {
			existing.Email = user.Email
			existing.UpdatedAt = time.Now()
			if err := u.userRepo.Update(ctx, existing); err != nil {
				return apperror.Persistence("Failed to update user", err)
			}
		}
		*user = *existing
		return nil
	}

	user.Role = domain.RoleUser
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	if err := u.userRepo.Create(ctx, user); err != nil {
		return apperror.Persistence("Failed to create user", err)
	}
	return nil
}

func (u *authUsecase) AssignRole(ctx context.Context, userID string, role string) error {
	// Security: Only admin can assign roles
	if err := requireAdmin(ctx); err != nil {
		return apperror.Forbidden("Only admins can assign roles")
	}
	if role != domain.RoleAdmin && role != domain.RoleUser {
		return apperror.BadRequest(fmt.Sprintf("Invalid role: %s", role))
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return apperror.Persistence("Failed to load user", err)
	}
	if user == nil {
		return apperror.NotFound("User not found")
	}

	user.Role = role
	user.UpdatedAt = time.Now()
	if err := u.userRepo.Update(ctx, user); err != nil {
		return apperror.Persistence("Failed to update user", err)
	}
	return nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Persistence("Failed to load user", err)
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	return user, nil
}
