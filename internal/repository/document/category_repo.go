// Package document implements the domain repositories on top of a
// DocumentGateway, so the same code runs against Postgres or memory.
package document

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/repository/docstore"
)

type categoryRepo struct {
	gw domain.DocumentGateway
}

func NewCategoryRepository(gw domain.DocumentGateway) domain.CategoryRepository {
	return &categoryRepo{gw: gw}
}

// categoryDoc is the stored shape; nameKey backs case-insensitive uniqueness.
type categoryDoc struct {
	domain.SkillCategory
	NameKey string `json:"nameKey"`
}

func (r *categoryRepo) GetByID(ctx context.Context, id string) (*domain.SkillCategory, error) {
	doc, err := r.gw.Get(ctx, domain.CollectionSkillCategories, id)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return decodeCategory(doc)
}

func (r *categoryRepo) FindByName(ctx context.Context, name string) (*domain.SkillCategory, error) {
	docs, err := r.gw.List(ctx, domain.CollectionSkillCategories, domain.Query{
		Where: map[string]interface{}{"nameKey": domain.CategoryNameKey(name)},
	})
	if err != nil {
		return nil, fmt.Errorf("find category by name: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return decodeCategory(docs[0])
}

func (r *categoryRepo) List(ctx context.Context, approvedOnly bool) ([]domain.SkillCategory, error) {
	q := domain.Query{OrderBy: "nameKey"}
	if approvedOnly {
		q.Where = map[string]interface{}{"approved": true}
	}
	docs, err := r.gw.List(ctx, domain.CollectionSkillCategories, q)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	out := make([]domain.SkillCategory, 0, len(docs))
	for _, doc := range docs {
		c, err := decodeCategory(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (r *categoryRepo) Create(ctx context.Context, category *domain.SkillCategory) (string, error) {
	doc := domain.Document{
		"name":      category.Name,
		"nameKey":   domain.CategoryNameKey(category.Name),
		"skills":    nonNil(category.Skills),
		"approved":  category.Approved,
		"createdAt": r.gw.ServerTimestamp(),
		"updatedAt": r.gw.ServerTimestamp(),
	}
	if category.ID != "" {
		doc["id"] = category.ID
	}

	id, err := r.gw.Create(ctx, domain.CollectionSkillCategories, doc)
	if err != nil {
		return "", err
	}
	category.ID = id
	return id, nil
}

func (r *categoryRepo) Update(ctx context.Context, category *domain.SkillCategory) error {
	return r.gw.Update(ctx, domain.CollectionSkillCategories, category.ID, domain.Document{
		"name":      category.Name,
		"nameKey":   domain.CategoryNameKey(category.Name),
		"skills":    nonNil(category.Skills),
		"approved":  category.Approved,
		"updatedAt": r.gw.ServerTimestamp(),
	})
}

func (r *categoryRepo) Delete(ctx context.Context, id string) error {
	return r.gw.Delete(ctx, domain.CollectionSkillCategories, id)
}

func decodeCategory(doc domain.Document) (*domain.SkillCategory, error) {
	var c categoryDoc
	if err := docstore.Decode(doc, &c); err != nil {
		return nil, err
	}
	// The gateway keys documents by "id"; the catalog exposes it as categoryId.
	if id, ok := doc["id"].(string); ok {
		c.ID = id
	}
	return &c.SkillCategory, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
