package repository

import (
	"context"
	"fmt"

	"portfolio-backend/config"
	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/repository/document"
	"portfolio-backend/internal/repository/memory"
	"portfolio-backend/internal/repository/postgres"
	"portfolio-backend/pkg/database"
	"portfolio-backend/pkg/logger"
)

// Storage is the gateway selected by STORAGE_DRIVER plus the typed
// repositories built on it.
type Storage struct {
	Gateway     domain.DocumentGateway
	Users       domain.UserRepository
	Categories  domain.CategoryRepository
	Requests    domain.CategoryRequestRepository
	Portfolios  domain.PortfolioRepository
	HealthCheck func(ctx context.Context) error
	close       func()
}

func Open(ctx context.Context, cfg *config.Config) (*Storage, error) {
	var (
		gw     domain.DocumentGateway
		health func(ctx context.Context) error
		closer = func() {}
	)

	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		logger.Log.Warn("Using in-memory storage; data is lost on restart")
		gw = memory.NewDocumentGateway()

	default:
		if cfg.RunMigrations {
			if err := postgres.RunMigrations(cfg.DBUrl); err != nil {
				return nil, err
			}
		}
		pool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		gw = postgres.NewDocumentGateway(pool)
		health = pool.Ping
		closer = pool.Close
	}

	return &Storage{
		Gateway:     gw,
		Users:       document.NewUserRepository(gw),
		Categories:  document.NewCategoryRepository(gw),
		Requests:    document.NewCategoryRequestRepository(gw),
		Portfolios:  document.NewPortfolioRepository(gw),
		HealthCheck: health,
		close:       closer,
	}, nil
}

func (s *Storage) Close() {
	s.close()
}
