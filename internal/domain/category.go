package domain

import (
	"context"
	"strings"
	"time"
)

// CategoryRequestStatus constants
const (
	RequestStatusPending  = "PENDING"
	RequestStatusApproved = "APPROVED"
	RequestStatusRejected = "REJECTED"
)

// ValidRequestStatuses for validation
var ValidRequestStatuses = []string{RequestStatusPending, RequestStatusApproved, RequestStatusRejected}

// IsTerminalRequestStatus reports whether no further transition is allowed.
func IsTerminalRequestStatus(status string) bool {
	return status == RequestStatusApproved || status == RequestStatusRejected
}

// SkillCategory is one entry of the shared catalog.
type SkillCategory struct {
	ID        string    `json:"categoryId"`
	Name      string    `json:"name"`
	Skills    []string  `json:"skills"`
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CategoryNameKey is the case-insensitive identity used for uniqueness.
func CategoryNameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// CategoryRequest is a user proposal for a new catalog entry.
type CategoryRequest struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	UserEmail       string    `json:"userEmail"`
	CategoryName    string    `json:"categoryName"`
	SuggestedSkills []string  `json:"suggestedSkills"`
	Status          string    `json:"status"`
	AdminComment    *string   `json:"adminComment,omitempty"`
	ReviewedBy      *string   `json:"reviewedBy,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// RequestFilter narrows ListRequests. Empty fields do not filter.
type RequestFilter struct {
	Status string `json:"status,omitempty" form:"status"`
	UserID string `json:"userId,omitempty" form:"userId"`
}

// SubmitCategoryRequest is the body of a new category request
type SubmitCategoryRequest struct {
	CategoryName    string   `json:"categoryName"`
	SuggestedSkills []string `json:"suggestedSkills"`
}

// CategoryInput creates or updates a catalog entry (admin)
type CategoryInput struct {
	Name     string   `json:"name" validate:"required,max=80,not_blank"`
	Skills   []string `json:"skills" validate:"omitempty,dive,max=80"`
	Approved *bool    `json:"approved,omitempty"`
}

type CategoryRepository interface {
	// GetByID returns nil, nil when absent.
	GetByID(ctx context.Context, id string) (*SkillCategory, error)
	// FindByName matches case-insensitively; nil, nil when absent.
	FindByName(ctx context.Context, name string) (*SkillCategory, error)
	List(ctx context.Context, approvedOnly bool) ([]SkillCategory, error)
	Create(ctx context.Context, category *SkillCategory) (string, error)
	Update(ctx context.Context, category *SkillCategory) error
	Delete(ctx context.Context, id string) error
}

type CategoryRequestRepository interface {
	// GetByID returns nil, nil when absent.
	GetByID(ctx context.Context, id string) (*CategoryRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]CategoryRequest, error)
	Create(ctx context.Context, req *CategoryRequest) (string, error)
	// UpdateStatus moves the request from one status to another. It fails
	// with ErrPreconditionFailed when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to string, reviewedBy string, comment *string) error
	UpdateComment(ctx context.Context, id string, comment string) error
}

type CategoryUsecase interface {
	SubmitRequest(ctx context.Context, categoryName string, suggestedSkills []string) (string, error)
	ListRequests(ctx context.Context, filter RequestFilter) ([]CategoryRequest, error)
	GetRequest(ctx context.Context, id string) (*CategoryRequest, error)
	Approve(ctx context.Context, requestID string) error
	Reject(ctx context.Context, requestID string, reason string) error
	UpdateAdminComment(ctx context.Context, requestID string, comment string) error

	ListCategories(ctx context.Context, includeUnapproved bool) ([]SkillCategory, error)
	CreateCategory(ctx context.Context, input CategoryInput) (*SkillCategory, error)
	UpdateCategory(ctx context.Context, id string, input CategoryInput) (*SkillCategory, error)
	DeleteCategory(ctx context.Context, id string) error
}
