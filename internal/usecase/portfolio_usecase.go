package usecase

import (
	"context"

	"portfolio-backend/internal/domain"
	"portfolio-backend/pkg/apperror"
	"portfolio-backend/pkg/logger"
	"portfolio-backend/pkg/metrics"
)

type portfolioUsecase struct {
	portfolioRepo domain.PortfolioRepository
}

func NewPortfolioUsecase(portfolioRepo domain.PortfolioRepository) domain.PortfolioUsecase {
	return &portfolioUsecase{portfolioRepo: portfolioRepo}
}

// SaveDraft stores content without touching the visibility of an existing
// portfolio. A first save creates a private draft.
func (u *portfolioUsecase) SaveDraft(ctx context.Context, userID string, content domain.PortfolioContent) (*domain.Portfolio, error) {
	return u.upsert(ctx, userID, content, false)
}

// Publish stores content and makes the portfolio publicly visible.
func (u *portfolioUsecase) Publish(ctx context.Context, userID string, content domain.PortfolioContent) (*domain.Portfolio, error) {
	return u.upsert(ctx, userID, content, true)
}

func (u *portfolioUsecase) upsert(ctx context.Context, userID string, content domain.PortfolioContent, publish bool) (*domain.Portfolio, error) {
	if _, err := requireOwner(ctx, userID, "edit"); err != nil {
		return nil, err
	}

	status, isPublic := domain.PortfolioStatusDraft, false
	if publish {
		status, isPublic = domain.PortfolioStatusPublished, true
	}

	existing, err := u.portfolioRepo.GetByUserID(ctx, userID)
	if err != nil {
		metrics.PortfolioSaves.WithLabelValues(status, "error").Inc()
		return nil, apperror.Persistence("Failed to load portfolio", err)
	}

	if existing == nil {
		err = u.portfolioRepo.Create(ctx, &domain.Portfolio{
			UserID:           userID,
			PortfolioContent: content,
			Status:           status,
			IsPublic:         isPublic,
		})
	} else {
		if !publish {
			status, isPublic = existing.Status, existing.IsPublic
		}
		err = u.portfolioRepo.UpdateContent(ctx, userID, content, status, isPublic)
	}
	if err != nil {
		metrics.PortfolioSaves.WithLabelValues(status, "error").Inc()
		logger.WithError(err).Error("Portfolio save failed", "user_id", userID, "status", status)
		return nil, apperror.Persistence("Failed to save portfolio", err)
	}

	metrics.PortfolioSaves.WithLabelValues(status, "ok").Inc()
	logger.Log.Info("Portfolio saved", "user_id", userID, "status", status, "created", existing == nil)
	return u.load(ctx, userID)
}

func (u *portfolioUsecase) GetOwn(ctx context.Context, userID string) (*domain.Portfolio, error) {
	if _, err := requireOwner(ctx, userID, "view"); err != nil {
		return nil, err
	}
	return u.load(ctx, userID)
}

// View is open to anonymous callers. Private portfolios are reported as
// missing to everyone but their owner.
func (u *portfolioUsecase) View(ctx context.Context, ownerID string) (*domain.Portfolio, error) {
	viewerID, _ := ctx.Value(domain.KeyUserID).(string)

	p, err := u.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if viewerID == ownerID {
		return p, nil
	}
	if !p.IsPublic {
		return nil, apperror.NotFound("Portfolio not found")
	}

	if err := u.portfolioRepo.IncrementVisitCount(ctx, ownerID); err != nil {
		// The page is still served; only the counter is lost
		logger.WithError(err).Warn("Failed to record portfolio visit", "owner_id", ownerID)
		return p, nil
	}
	p.VisitCount++
	metrics.PortfolioViews.Inc()
	return p, nil
}

func (u *portfolioUsecase) ListPublished(ctx context.Context) ([]domain.PortfolioSummary, error) {
	portfolios, err := u.portfolioRepo.ListPublic(ctx)
	if err != nil {
		return nil, apperror.Persistence("Failed to list portfolios", err)
	}

	summaries := make([]domain.PortfolioSummary, 0, len(portfolios))
	for _, p := range portfolios {
		if p.Status != domain.PortfolioStatusPublished {
			continue
		}
		summaries = append(summaries, domain.PortfolioSummary{
			UserID:     p.UserID,
			FullName:   p.PersonalInfo.FullName,
			Title:      p.PersonalInfo.Title,
			Location:   p.PersonalInfo.Location,
			VisitCount: p.VisitCount,
			UpdatedAt:  p.UpdatedAt,
		})
	}
	return summaries, nil
}

func (u *portfolioUsecase) Delete(ctx context.Context, userID string) error {
	if _, err := requireOwner(ctx, userID, "delete"); err != nil {
		return err
	}

	existing, err := u.portfolioRepo.GetByUserID(ctx, userID)
	if err != nil {
		return apperror.Persistence("Failed to load portfolio", err)
	}
	if existing == nil {
		return apperror.NotFound("Portfolio not found")
	}

	if err := u.portfolioRepo.Delete(ctx, userID); err != nil {
		return apperror.Persistence("Failed to delete portfolio", err)
	}
	logger.Log.Info("Portfolio deleted", "user_id", userID, "was_public", existing.IsPublic)
	return nil
}

func (u *portfolioUsecase) load(ctx context.Context, userID string) (*domain.Portfolio, error) {
	p, err := u.portfolioRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.Persistence("Failed to load portfolio", err)
	}
	if p == nil {
		return nil, apperror.NotFound("Portfolio not found")
	}
	return p, nil
}
