package v1

import (
	"net/http"

	"portfolio-backend/internal/delivery/http/response"
	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/form"

	"github.com/gin-gonic/gin"
)

type PortfolioHandler struct {
	portfolioUC domain.PortfolioUsecase
	registry    *form.Registry
}

func NewPortfolioHandler(optional *gin.RouterGroup, protected *gin.RouterGroup, portfolioUC domain.PortfolioUsecase, registry *form.Registry) {
	handler := &PortfolioHandler{portfolioUC: portfolioUC, registry: registry}

	optional.GET("/portfolios", handler.ListPublished)
	optional.GET("/portfolios/:userId", handler.View)

	protected.GET("/portfolios/me", handler.GetOwn)
	protected.DELETE("/portfolios/me", handler.Delete)
}

// ListPublished handles GET /v1/portfolios.
func (h *PortfolioHandler) ListPublished(c *gin.Context) {
	summaries, err := h.portfolioUC.ListPublished(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Published portfolios", summaries)
}

// View handles GET /v1/portfolios/:userId.
func (h *PortfolioHandler) View(c *gin.Context) {
	p, err := h.portfolioUC.View(c.Request.Context(), c.Param("userId"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Portfolio", p)
}

// GetOwn handles GET /v1/portfolios/me.
func (h *PortfolioHandler) GetOwn(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))
	p, err := h.portfolioUC.GetOwn(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Portfolio", p)
}

// Delete handles DELETE /v1/portfolios/me.
func (h *PortfolioHandler) Delete(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))
	if err := h.portfolioUC.Delete(c.Request.Context(), userID); err != nil {
		c.Error(err)
		return
	}
	h.registry.Drop(userID)
	response.Success(c, http.StatusOK, "Portfolio deleted", nil)
}
