package v1

import (
	"context"
	"net/http"
	"time"

	"portfolio-backend/config"
	"portfolio-backend/internal/delivery/http/middleware"
	"portfolio-backend/internal/delivery/http/response"
	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/form"
	"portfolio-backend/pkg/auth"
	"portfolio-backend/pkg/metrics"
	"portfolio-backend/pkg/redis"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

type RouterDeps struct {
	AuthUC       domain.AuthUsecase
	CategoryUC   domain.CategoryUsecase
	PortfolioUC  domain.PortfolioUsecase
	FormRegistry *form.Registry
	JWKSProvider *auth.Provider
	Redis        *goredis.Client // nil means in-memory rate limiting
	Config       *config.Config
	// HealthCheck reports storage health; nil skips the check
	HealthCheck func(ctx context.Context) error
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins, cfg.IsProduction())) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.SecurityHeadersMiddleware(cfg.IsProduction()))
	if cfg.MetricsEnabled {
		r.Use(middleware.Metrics())
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.NewRateLimiter(deps.Redis, middleware.GlobalRateLimitConfig(cfg.RateLimitGlobalThreshold, window)).Middleware())

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if deps.HealthCheck != nil {
			if err := deps.HealthCheck(ctx); err != nil {
				response.Error(c, http.StatusServiceUnavailable, "Storage unavailable", nil)
				return
			}
		}

		// Redis only backs rate limiting, so losing it degrades but never fails
		status := gin.H{"storage": "ok", "rateLimit": "memory"}
		if deps.Redis != nil {
			status["rateLimit"] = "redis"
			if err := redis.HealthCheck(ctx, deps.Redis); err != nil {
				status["rateLimit"] = "degraded"
			}
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})

	optional := v1.Group("")
	optional.Use(middleware.OptionalAuthMiddleware(deps.JWKSProvider, cfg, deps.AuthUC))

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWKSProvider, cfg, deps.AuthUC))
	protected.Use(middleware.NewRateLimiter(deps.Redis, middleware.WriteRateLimitConfig(cfg.RateLimitWriteThreshold, window)).Middleware())

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireAdmin())

	NewAuthHandler(protected, admin, deps.AuthUC)
	NewCategoryHandler(v1, protected, admin, deps.CategoryUC)
	NewPortfolioHandler(optional, protected, deps.PortfolioUC, deps.FormRegistry)
	NewFormHandler(protected, deps.FormRegistry)

	return r
}
