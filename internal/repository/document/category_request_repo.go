package document

import (
	"context"
	"errors"
	"fmt"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/repository/docstore"
)

type categoryRequestRepo struct {
	gw domain.DocumentGateway
}

func NewCategoryRequestRepository(gw domain.DocumentGateway) domain.CategoryRequestRepository {
	return &categoryRequestRepo{gw: gw}
}

func (r *categoryRequestRepo) GetByID(ctx context.Context, id string) (*domain.CategoryRequest, error) {
	doc, err := r.gw.Get(ctx, domain.CollectionCategoryRequests, id)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return nil, nil // Not found is not an error, just return nil
		}
		return nil, err
	}
	var req domain.CategoryRequest
	if err := docstore.Decode(doc, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// List returns every matching request, newest first. There is no paging.
func (r *categoryRequestRepo) List(ctx context.Context, filter domain.RequestFilter) ([]domain.CategoryRequest, error) {
	where := map[string]interface{}{}
	if filter.Status != "" {
		where["status"] = filter.Status
	}
	if filter.UserID != "" {
		where["userId"] = filter.UserID
	}

	docs, err := r.gw.List(ctx, domain.CollectionCategoryRequests, domain.Query{
		Where:   where,
		OrderBy: "createdAt",
		Desc:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("list category requests: %w", err)
	}

	out := make([]domain.CategoryRequest, 0, len(docs))
	for _, doc := range docs {
		var req domain.CategoryRequest
		if err := docstore.Decode(doc, &req); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, nil
}

func (r *categoryRequestRepo) Create(ctx context.Context, req *domain.CategoryRequest) (string, error) {
	id, err := r.gw.Create(ctx, domain.CollectionCategoryRequests, domain.Document{
		"userId":          req.UserID,
		"userEmail":       req.UserEmail,
		"categoryName":    req.CategoryName,
		"suggestedSkills": nonNil(req.SuggestedSkills),
		"status":          req.Status,
		"createdAt":       r.gw.ServerTimestamp(),
		"updatedAt":       r.gw.ServerTimestamp(),
	})
	if err != nil {
		return "", err
	}
	req.ID = id
	return id, nil
}

func (r *categoryRequestRepo) UpdateStatus(ctx context.Context, id string, from, to string, reviewedBy string, comment *string) error {
	patch := domain.Document{
		"status":     to,
		"reviewedBy": reviewedBy,
		"updatedAt":  r.gw.ServerTimestamp(),
	}
	if comment != nil {
		patch["adminComment"] = *comment
	}
	return r.gw.UpdateIf(ctx, domain.CollectionCategoryRequests, id, domain.Document{"status": from}, patch)
}

func (r *categoryRequestRepo) UpdateComment(ctx context.Context, id string, comment string) error {
	return r.gw.Update(ctx, domain.CollectionCategoryRequests, id, domain.Document{
		"adminComment": comment,
		"updatedAt":    r.gw.ServerTimestamp(),
	})
}
