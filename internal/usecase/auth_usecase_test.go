package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAuthPrivilege(t *testing.T) {
	mockRepo := new(MockUserRepo)
	uc := usecase.NewAuthUsecase(mockRepo)

	t.Run("Should fail if role is not admin", func(t *testing.T) {
		err := uc.AssignRole(userCtx("user1"), "target_user", "admin")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Only admins can assign roles")
	})

	t.Run("Should fail safe if role is nil", func(t *testing.T) {
		err := uc.AssignRole(context.Background(), "target_user", "admin")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Only admins can assign roles")
	})

	t.Run("Should reject unknown roles", func(t *testing.T) {
		err := uc.AssignRole(adminCtx("admin1"), "target_user", "superuser")
		assertCode(t, err, http.StatusBadRequest)
	})

	t.Run("Should update the stored role", func(t *testing.T) {
		ctx := adminCtx("admin1")
		mockRepo.On("GetByID", ctx, "target_user").Return(&domain.User{ID: "target_user", Role: domain.RoleUser}, nil).Once()
		mockRepo.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil).Run(func(args mock.Arguments) {
			assert.Equal(t, domain.RoleAdmin, args.Get(1).(*domain.User).Role)
		}).Once()

		assert.NoError(t, uc.AssignRole(ctx, "target_user", domain.RoleAdmin))
		mockRepo.AssertExpectations(t)
	})

	t.Run("Should report a missing user", func(t *testing.T) {
		ctx := adminCtx("admin1")
		mockRepo.On("GetByID", ctx, "ghost").Return(nil, nil).Once()
		assertNotFound(t, uc.AssignRole(ctx, "ghost", domain.RoleAdmin))
	})
}

func TestEnsureUserExists(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create new users with the user role", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		uc := usecase.NewAuthUsecase(mockRepo)
		mockRepo.On("GetByID", ctx, "new").Return(nil, nil)
		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

		user := &domain.User{ID: "new", Email: "new@example.com", Role: domain.RoleAdmin}
		assert.NoError(t, uc.EnsureUserExists(ctx, user))
		assert.Equal(t, domain.RoleUser, user.Role)
		assert.False(t, user.CreatedAt.IsZero())
	})

	t.Run("Should keep the stored role of existing users", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		uc := usecase.NewAuthUsecase(mockRepo)
		mockRepo.On("GetByID", ctx, "old").Return(&domain.User{ID: "old", Email: "old@example.com", Role: domain.RoleAdmin}, nil)

		user := &domain.User{ID: "old", Email: "old@example.com"}
		assert.NoError(t, uc.EnsureUserExists(ctx, user))
		assert.Equal(t, domain.RoleAdmin, user.Role)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Should refresh a changed email", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		uc := usecase.NewAuthUsecase(mockRepo)
		mockRepo.On("GetByID", ctx, "old").Return(&domain.User{ID: "old", Email: "old@example.com", Role: domain.RoleUser}, nil)
		mockRepo.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

		user := &domain.User{ID: "old", Email: "new@example.com"}
		assert.NoError(t, uc.EnsureUserExists(ctx, user))
		assert.Equal(t, "new@example.com", user.Email)
		mockRepo.AssertCalled(t, "Update", ctx, mock.AnythingOfType("*domain.User"))
	})

	t.Run("Should surface storage failures as unavailable", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		uc := usecase.NewAuthUsecase(mockRepo)
		mockRepo.On("GetByID", ctx, "x").Return(nil, errors.New("connection reset"))

		err := uc.EnsureUserExists(ctx, &domain.User{ID: "x"})
		assertCode(t, err, http.StatusServiceUnavailable)
	})
}
