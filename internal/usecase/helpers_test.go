package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"portfolio-backend/internal/domain"
	"portfolio-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func userCtx(userID string) context.Context {
	ctx := context.WithValue(context.Background(), domain.KeyUserID, userID)
	ctx = context.WithValue(ctx, domain.KeyUserEmail, userID+"@example.com")
	return context.WithValue(ctx, domain.KeyUserRole, domain.RoleUser)
}

func adminCtx(userID string) context.Context {
	ctx := context.WithValue(context.Background(), domain.KeyUserID, userID)
	return context.WithValue(ctx, domain.KeyUserRole, domain.RoleAdmin)
}

func assertCode(t *testing.T, err error, code int) {
	t.Helper()
	if assert.Error(t, err) {
		assert.Equal(t, code, apperror.CodeOf(err), "unexpected error: %v", err)
	}
}

func assertNotFound(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, http.StatusNotFound)
}

// Mock Repositories
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockRequestRepo struct {
	mock.Mock
}

func (m *MockRequestRepo) GetByID(ctx context.Context, id string) (*domain.CategoryRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CategoryRequest), args.Error(1)
}
func (m *MockRequestRepo) List(ctx context.Context, filter domain.RequestFilter) ([]domain.CategoryRequest, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CategoryRequest), args.Error(1)
}
func (m *MockRequestRepo) Create(ctx context.Context, req *domain.CategoryRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
func (m *MockRequestRepo) UpdateStatus(ctx context.Context, id string, from, to string, reviewedBy string, comment *string) error {
	return m.Called(ctx, id, from, to, reviewedBy, comment).Error(0)
}
func (m *MockRequestRepo) UpdateComment(ctx context.Context, id string, comment string) error {
	return m.Called(ctx, id, comment).Error(0)
}

type MockPortfolioRepo struct {
	mock.Mock
}

func (m *MockPortfolioRepo) GetByUserID(ctx context.Context, userID string) (*domain.Portfolio, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Portfolio), args.Error(1)
}
func (m *MockPortfolioRepo) ListPublic(ctx context.Context) ([]domain.Portfolio, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Portfolio), args.Error(1)
}
func (m *MockPortfolioRepo) Create(ctx context.Context, portfolio *domain.Portfolio) error {
	return m.Called(ctx, portfolio).Error(0)
}
func (m *MockPortfolioRepo) UpdateContent(ctx context.Context, userID string, content domain.PortfolioContent, status string, isPublic bool) error {
	return m.Called(ctx, userID, content, status, isPublic).Error(0)
}
func (m *MockPortfolioRepo) IncrementVisitCount(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}
func (m *MockPortfolioRepo) Delete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

// staleRequestRepo serves a copy of the request captured before another
// admin's decision on the first read, then reads through.
type staleRequestRepo struct {
	domain.CategoryRequestRepository
	stale  *domain.CategoryRequest
	served bool
}

func (r *staleRequestRepo) GetByID(ctx context.Context, id string) (*domain.CategoryRequest, error) {
	if !r.served && r.stale != nil && r.stale.ID == id {
		r.served = true
		cp := *r.stale
		return &cp, nil
	}
	return r.CategoryRequestRepository.GetByID(ctx, id)
}
