package usecase

import (
	"context"
	"errors"
	"slices"
	"strings"

	"portfolio-backend/internal/domain"
	"portfolio-backend/pkg/apperror"
	"portfolio-backend/pkg/logger"
	"portfolio-backend/pkg/metrics"
	"portfolio-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type categoryUsecase struct {
	categoryRepo domain.CategoryRepository
	requestRepo  domain.CategoryRequestRepository
	validate     *validator.Validate
}

func NewCategoryUsecase(categoryRepo domain.CategoryRepository, requestRepo domain.CategoryRequestRepository, validate *validator.Validate) domain.CategoryUsecase {
	return &categoryUsecase{
		categoryRepo: categoryRepo,
		requestRepo:  requestRepo,
		validate:     validate,
	}
}

// ============================================================================
// Category Requests
// ============================================================================

func (u *categoryUsecase) SubmitRequest(ctx context.Context, categoryName string, suggestedSkills []string) (string, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return "", err
	}

	name := strings.TrimSpace(categoryName)
	if name == "" {
		return "", apperror.Validation("Category name is required", []validation.FieldError{
			{Field: "categoryName", Message: "Category name is required"},
		})
	}

	req := &domain.CategoryRequest{
		UserID:          userID,
		UserEmail:       currentUserEmail(ctx),
		CategoryName:    name,
		SuggestedSkills: cleanSkills(suggestedSkills),
		Status:          domain.RequestStatusPending,
	}

	id, err := u.requestRepo.Create(ctx, req)
	if err != nil {
		return "", apperror.Persistence("Failed to submit category request", err)
	}

	metrics.CategoryRequestTransitions.WithLabelValues(domain.RequestStatusPending).Inc()
	logger.Log.Info("Category request submitted", "request_id", id, "user_id", userID, "category", name)
	return id, nil
}

// ListRequests returns requests newest first. Non-admin callers only ever see
// their own requests, whatever filter they asked for.
func (u *categoryUsecase) ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.CategoryRequest, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	if !isAdmin(ctx) {
		filter.UserID = userID
	}

	if filter.Status != "" {
		filter.Status = strings.ToUpper(filter.Status)
		if !slices.Contains(domain.ValidRequestStatuses, filter.Status) {
			return nil, apperror.BadRequest("Invalid status: must be PENDING, APPROVED, or REJECTED")
		}
	}

	requests, err := u.requestRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Persistence("Failed to list category requests", err)
	}
	return requests, nil
}

func (u *categoryUsecase) GetRequest(ctx context.Context, id string) (*domain.CategoryRequest, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	req, err := u.loadRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin(ctx) && req.UserID != userID {
		// Same answer as a missing request so ids cannot be guessed
		return nil, apperror.NotFound("Category request not found")
	}
	return req, nil
}

// Approve moves a PENDING request to APPROVED. The catalog write happens
// first: if the status flip then fails the request stays PENDING and a retry
// finds the category already present and reuses it.
func (u *categoryUsecase) Approve(ctx context.Context, requestID string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	adminID, _ := currentUserID(ctx)

	req, err := u.loadRequest(ctx, requestID)
	if err != nil {
		return err
	}

	switch req.Status {
	case domain.RequestStatusApproved:
		return nil
	case domain.RequestStatusRejected:
		return apperror.Conflict("Request was already rejected and cannot be approved")
	}

	category, created, err := u.ensureCatalogEntry(ctx, req)
	if err != nil {
		return err
	}

	err = u.requestRepo.UpdateStatus(ctx, req.ID, domain.RequestStatusPending, domain.RequestStatusApproved, adminID, nil)
	if errors.Is(err, domain.ErrPreconditionFailed) {
		return u.settleLostApproval(ctx, req.ID, category, created)
	}
	if err != nil {
		logger.WithError(err).Error("Approve status flip failed, request left pending",
			"request_id", req.ID, "category_id", category.ID)
		return apperror.Persistence("Failed to approve category request", err)
	}

	metrics.CategoryRequestTransitions.WithLabelValues(domain.RequestStatusApproved).Inc()
	logger.Log.Info("Category request approved",
		"request_id", req.ID, "category_id", category.ID, "admin_id", adminID)
	return nil
}

// settleLostApproval runs when the request left PENDING between the read and
// the status flip. A concurrent approval counts as success. A concurrent
// rejection stands, and a catalog entry created for it is removed unless an
// approved request of the same name now relies on it.
func (u *categoryUsecase) settleLostApproval(ctx context.Context, requestID string, category *domain.SkillCategory, created bool) error {
	current, err := u.loadRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if current.Status == domain.RequestStatusApproved {
		return nil
	}

	if created {
		inUse, err := u.approvedRequestExists(ctx, category.Name)
		if err != nil {
			logger.WithError(err).Warn("Catalog entry of a rejected request kept", "category_id", category.ID)
		} else if !inUse {
			if err := u.categoryRepo.Delete(ctx, category.ID); err != nil && !errors.Is(err, domain.ErrDocumentNotFound) {
				logger.WithError(err).Error("Failed to remove catalog entry of a rejected request",
					"request_id", requestID, "category_id", category.ID)
			}
		}
	}

	logger.Log.Warn("Approval lost to a concurrent review", "request_id", requestID, "status", current.Status)
	return apperror.Conflict("Request was reviewed by someone else and cannot be approved")
}

func (u *categoryUsecase) approvedRequestExists(ctx context.Context, name string) (bool, error) {
	approved, err := u.requestRepo.List(ctx, domain.RequestFilter{Status: domain.RequestStatusApproved})
	if err != nil {
		return false, err
	}
	key := domain.CategoryNameKey(name)
	return slices.ContainsFunc(approved, func(r domain.CategoryRequest) bool {
		return domain.CategoryNameKey(r.CategoryName) == key
	}), nil
}

// ensureCatalogEntry returns the approved catalog entry for the request name,
// creating it or merging the suggested skills into an existing one. created
// reports whether this call added the entry.
func (u *categoryUsecase) ensureCatalogEntry(ctx context.Context, req *domain.CategoryRequest) (*domain.SkillCategory, bool, error) {
	existing, err := u.categoryRepo.FindByName(ctx, req.CategoryName)
	if err != nil {
		return nil, false, apperror.Persistence("Failed to look up catalog", err)
	}

	if existing != nil {
		merged := mergeSkills(existing.Skills, req.SuggestedSkills)
		if existing.Approved && len(merged) == len(existing.Skills) {
			return existing, false, nil
		}
		existing.Approved = true
		existing.Skills = merged
		if err := u.categoryRepo.Update(ctx, existing); err != nil {
			return nil, false, apperror.Persistence("Failed to update catalog entry", err)
		}
		return existing, false, nil
	}

	category := &domain.SkillCategory{
		Name:     req.CategoryName,
		Skills:   req.SuggestedSkills,
		Approved: true,
	}
	if _, err := u.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, domain.ErrDocumentExists) {
			// Lost a race with a concurrent approval of the same name
			again, findErr := u.categoryRepo.FindByName(ctx, req.CategoryName)
			if findErr == nil && again != nil {
				return again, false, nil
			}
		}
		return nil, false, apperror.Persistence("Failed to create catalog entry", err)
	}
	return category, true, nil
}

// Reject moves a PENDING request to REJECTED. Rejecting an already rejected
// request only replaces the comment.
func (u *categoryUsecase) Reject(ctx context.Context, requestID string, reason string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	adminID, _ := currentUserID(ctx)

	req, err := u.loadRequest(ctx, requestID)
	if err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)

	if req.Status == domain.RequestStatusPending {
		err := u.requestRepo.UpdateStatus(ctx, req.ID, domain.RequestStatusPending, domain.RequestStatusRejected, adminID, &reason)
		if err == nil {
			metrics.CategoryRequestTransitions.WithLabelValues(domain.RequestStatusRejected).Inc()
			logger.Log.Info("Category request rejected", "request_id", req.ID, "admin_id", adminID)
			return nil
		}
		if !errors.Is(err, domain.ErrPreconditionFailed) {
			return apperror.Persistence("Failed to reject category request", err)
		}
		// Someone else reviewed it in the meantime
		if req, err = u.loadRequest(ctx, req.ID); err != nil {
			return err
		}
	}

	switch req.Status {
	case domain.RequestStatusApproved:
		return apperror.Conflict("Request was already approved and cannot be rejected")
	case domain.RequestStatusRejected:
		if err := u.requestRepo.UpdateComment(ctx, req.ID, reason); err != nil {
			return apperror.Persistence("Failed to update admin comment", err)
		}
		return nil
	}
	return apperror.Conflict("Request changed while being reviewed, please retry")
}

func (u *categoryUsecase) UpdateAdminComment(ctx context.Context, requestID string, comment string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	req, err := u.loadRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if err := u.requestRepo.UpdateComment(ctx, req.ID, strings.TrimSpace(comment)); err != nil {
		return apperror.Persistence("Failed to update admin comment", err)
	}
	return nil
}

func (u *categoryUsecase) loadRequest(ctx context.Context, id string) (*domain.CategoryRequest, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperror.BadRequest("Request ID is required")
	}
	req, err := u.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Persistence("Failed to load category request", err)
	}
	if req == nil {
		return nil, apperror.NotFound("Category request not found")
	}
	return req, nil
}

// ============================================================================
// Catalog
// ============================================================================

func (u *categoryUsecase) ListCategories(ctx context.Context, includeUnapproved bool) ([]domain.SkillCategory, error) {
	approvedOnly := !(includeUnapproved && isAdmin(ctx))
	categories, err := u.categoryRepo.List(ctx, approvedOnly)
	if err != nil {
		return nil, apperror.Persistence("Failed to list skill categories", err)
	}
	return categories, nil
}

func (u *categoryUsecase) CreateCategory(ctx context.Context, input domain.CategoryInput) (*domain.SkillCategory, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := u.validateInput(&input); err != nil {
		return nil, err
	}

	existing, err := u.categoryRepo.FindByName(ctx, input.Name)
	if err != nil {
		return nil, apperror.Persistence("Failed to look up catalog", err)
	}
	if existing != nil {
		return nil, apperror.Conflict("A category with this name already exists")
	}

	category := &domain.SkillCategory{
		Name:     input.Name,
		Skills:   input.Skills,
		Approved: true,
	}
	if input.Approved != nil {
		category.Approved = *input.Approved
	}

	if _, err := u.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, domain.ErrDocumentExists) {
			return nil, apperror.Conflict("A category with this name already exists")
		}
		return nil, apperror.Persistence("Failed to create category", err)
	}
	return u.reload(ctx, category.ID)
}

func (u *categoryUsecase) UpdateCategory(ctx context.Context, id string, input domain.CategoryInput) (*domain.SkillCategory, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := u.validateInput(&input); err != nil {
		return nil, err
	}

	category, err := u.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Persistence("Failed to load category", err)
	}
	if category == nil {
		return nil, apperror.NotFound("Skill category not found")
	}

	clash, err := u.categoryRepo.FindByName(ctx, input.Name)
	if err != nil {
		return nil, apperror.Persistence("Failed to look up catalog", err)
	}
	if clash != nil && clash.ID != category.ID {
		return nil, apperror.Conflict("A category with this name already exists")
	}

	category.Name = input.Name
	if input.Skills != nil {
		category.Skills = input.Skills
	}
	if input.Approved != nil {
		category.Approved = *input.Approved
	}

	if err := u.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, domain.ErrDocumentExists) {
			return nil, apperror.Conflict("A category with this name already exists")
		}
		return nil, apperror.Persistence("Failed to update category", err)
	}
	return u.reload(ctx, category.ID)
}

func (u *categoryUsecase) DeleteCategory(ctx context.Context, id string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	if err := u.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return apperror.NotFound("Skill category not found")
		}
		return apperror.Persistence("Failed to delete category", err)
	}
	return nil
}

func (u *categoryUsecase) validateInput(input *domain.CategoryInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Skills != nil {
		input.Skills = cleanSkills(input.Skills)
	}
	if err := u.validate.Struct(input); err != nil {
		return apperror.Validation("Validation failed", validation.FormatFieldErrors(err, ""))
	}
	return nil
}

func (u *categoryUsecase) reload(ctx context.Context, id string) (*domain.SkillCategory, error) {
	category, err := u.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Persistence("Failed to load category", err)
	}
	if category == nil {
		return nil, apperror.NotFound("Skill category not found")
	}
	return category, nil
}

// cleanSkills trims entries and drops blanks and case-insensitive repeats.
func cleanSkills(skills []string) []string {
	return mergeSkills(nil, skills)
}

func mergeSkills(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]bool, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, s := range list {
			s = strings.TrimSpace(s)
			key := strings.ToLower(s)
			if s == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, s)
		}
	}
	return out
}
