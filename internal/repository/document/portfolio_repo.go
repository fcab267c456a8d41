package document

import (
	"context"
	"errors"
	"fmt"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/repository/docstore"
)

// Portfolios are keyed by the owning user's id.
type portfolioRepo struct {
	gw domain.DocumentGateway
}

func NewPortfolioRepository(gw domain.DocumentGateway) domain.PortfolioRepository {
	return &portfolioRepo{gw: gw}
}

func (r *portfolioRepo) GetByUserID(ctx context.Context, userID string) (*domain.Portfolio, error) {
	doc, err := r.gw.Get(ctx, domain.CollectionPortfolios, userID)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return decodePortfolio(doc)
}

func (r *portfolioRepo) ListPublic(ctx context.Context) ([]domain.Portfolio, error) {
	docs, err := r.gw.List(ctx, domain.CollectionPortfolios, domain.Query{
		Where:   map[string]interface{}{"isPublic": true},
		OrderBy: "updatedAt",
		Desc:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("list public portfolios: %w", err)
	}

	out := make([]domain.Portfolio, 0, len(docs))
	for _, doc := range docs {
		p, err := decodePortfolio(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *portfolioRepo) Create(ctx context.Context, portfolio *domain.Portfolio) error {
	doc, err := contentDocument(portfolio.PortfolioContent)
	if err != nil {
		return err
	}
	doc["id"] = portfolio.UserID
	doc["userId"] = portfolio.UserID
	doc["status"] = portfolio.Status
	doc["isPublic"] = portfolio.IsPublic
	doc["visitCount"] = 0
	doc["createdAt"] = r.gw.ServerTimestamp()
	doc["updatedAt"] = r.gw.ServerTimestamp()

	_, err = r.gw.Create(ctx, domain.CollectionPortfolios, doc)
	return err
}

func (r *portfolioRepo) UpdateContent(ctx context.Context, userID string, content domain.PortfolioContent, status string, isPublic bool) error {
	patch, err := contentDocument(content)
	if err != nil {
		return err
	}
	patch["status"] = status
	patch["isPublic"] = isPublic
	patch["updatedAt"] = r.gw.ServerTimestamp()
	return r.gw.Update(ctx, domain.CollectionPortfolios, userID, patch)
}

func (r *portfolioRepo) IncrementVisitCount(ctx context.Context, userID string) error {
	return r.gw.IncrementField(ctx, domain.CollectionPortfolios, userID, "visitCount", 1)
}

func (r *portfolioRepo) Delete(ctx context.Context, userID string) error {
	return r.gw.Delete(ctx, domain.CollectionPortfolios, userID)
}

func contentDocument(content domain.PortfolioContent) (domain.Document, error) {
	doc, err := docstore.Encode(content)
	if err != nil {
		return nil, fmt.Errorf("encode portfolio content: %w", err)
	}
	return doc, nil
}

func decodePortfolio(doc domain.Document) (*domain.Portfolio, error) {
	var p domain.Portfolio
	if err := docstore.Decode(doc, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
