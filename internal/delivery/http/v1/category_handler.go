package v1

import (
	"net/http"
	"strconv"

	"portfolio-backend/internal/delivery/http/response"
	"portfolio-backend/internal/domain"
	"portfolio-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	categoryUC domain.CategoryUsecase
}

func NewCategoryHandler(public *gin.RouterGroup, protected *gin.RouterGroup, admin *gin.RouterGroup, categoryUC domain.CategoryUsecase) {
	handler := &CategoryHandler{categoryUC: categoryUC}

	public.GET("/skill-categories", handler.ListCategories)

	requests := protected.Group("/category-requests")
	{
		requests.POST("", handler.SubmitRequest)
		requests.GET("", handler.ListMyRequests)
		requests.GET("/:id", handler.GetRequest)
	}

	adminRequests := admin.Group("/category-requests")
	{
		adminRequests.GET("", handler.ListAllRequests)
		adminRequests.POST("/:id/approve", handler.Approve)
		adminRequests.POST("/:id/reject", handler.Reject)
		adminRequests.PATCH("/:id/comment", handler.UpdateComment)
	}

	adminCategories := admin.Group("/skill-categories")
	{
		adminCategories.GET("", handler.ListAllCategories)
		adminCategories.POST("", handler.CreateCategory)
		adminCategories.PUT("/:id", handler.UpdateCategory)
		adminCategories.DELETE("/:id", handler.DeleteCategory)
	}
}

type ReviewRequest struct {
	Reason string `json:"reason"`
}

type CommentRequest struct {
	Comment string `json:"comment"`
}

// ListCategories handles GET /v1/skill-categories.
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryUC.ListCategories(c.Request.Context(), false)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Skill categories", categories)
}

// SubmitRequest handles POST /v1/category-requests.
func (h *CategoryHandler) SubmitRequest(c *gin.Context) {
	var req domain.SubmitCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	id, err := h.categoryUC.SubmitRequest(c.Request.Context(), req.CategoryName, req.SuggestedSkills)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Category request submitted", gin.H{"id": id})
}

// ListMyRequests handles GET /v1/category-requests.
func (h *CategoryHandler) ListMyRequests(c *gin.Context) {
	filter := domain.RequestFilter{
		Status: c.Query("status"),
		UserID: c.GetString(string(domain.KeyUserID)),
	}
	requests, err := h.categoryUC.ListRequests(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Category requests", requests)
}

// GetRequest handles GET /v1/category-requests/:id.
func (h *CategoryHandler) GetRequest(c *gin.Context) {
	req, err := h.categoryUC.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Category request", req)
}

// ListAllRequests handles GET /v1/admin/category-requests.
func (h *CategoryHandler) ListAllRequests(c *gin.Context) {
	var filter domain.RequestFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}
	requests, err := h.categoryUC.ListRequests(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Category requests", gin.H{
		"requests": requests,
		"total":    len(requests),
	})
}

// Approve handles POST /v1/admin/category-requests/:id/approve.
func (h *CategoryHandler) Approve(c *gin.Context) {
	if err := h.categoryUC.Approve(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Category request approved", nil)
}

// Reject handles POST /v1/admin/category-requests/:id/reject.
func (h *CategoryHandler) Reject(c *gin.Context) {
	var req ReviewRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperror.BadRequest(err.Error()))
			return
		}
	}
	if err := h.categoryUC.Reject(c.Request.Context(), c.Param("id"), req.Reason); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Category request rejected", nil)
}

// UpdateComment handles PATCH /v1/admin/category-requests/:id/comment.
func (h *CategoryHandler) UpdateComment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}
	if err := h.categoryUC.UpdateAdminComment(c.Request.Context(), c.Param("id"), req.Comment); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Comment updated", nil)
}

// ListAllCategories handles GET /v1/admin/skill-categories.
func (h *CategoryHandler) ListAllCategories(c *gin.Context) {
	include := true
	if raw := c.Query("includeUnapproved"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.Error(apperror.BadRequest("includeUnapproved must be true or false"))
			return
		}
		include = parsed
	}
	categories, err := h.categoryUC.ListCategories(c.Request.Context(), include)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Skill categories", categories)
}

// CreateCategory handles POST /v1/admin/skill-categories.
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var input domain.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}
	category, err := h.categoryUC.CreateCategory(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Skill category created", category)
}

// UpdateCategory handles PUT /v1/admin/skill-categories/:id.
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	var input domain.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}
	category, err := h.categoryUC.UpdateCategory(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Skill category updated", category)
}

// DeleteCategory handles DELETE /v1/admin/skill-categories/:id.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	if err := h.categoryUC.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Skill category deleted", nil)
}
