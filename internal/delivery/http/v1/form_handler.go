package v1

import (
	"io"
	"net/http"
	"strconv"

	"portfolio-backend/internal/delivery/http/response"
	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/form"
	"portfolio-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// maxDraftBody bounds draft patches and list entries.
const maxDraftBody = 1 << 20

type FormHandler struct {
	registry *form.Registry
}

func NewFormHandler(protected *gin.RouterGroup, registry *form.Registry) {
	handler := &FormHandler{registry: registry}

	f := protected.Group("/portfolio/form")
	{
		f.GET("", handler.GetState)
		f.PATCH("/draft", handler.UpdateDraft)
		f.PUT("/step", handler.ChangeStep)
		f.POST("/steps/:step/validate", handler.ValidateStep)
		f.POST("/validate", handler.ValidateAll)

		f.POST("/arrays/:field", handler.AppendEntry)
		f.DELETE("/arrays/:field/:index", handler.RemoveEntry)
		f.PUT("/arrays/:field/move", handler.MoveEntry)
		f.POST("/arrays/:field/:index/:nested", handler.AppendNestedEntry)
		f.DELETE("/arrays/:field/:index/:nested/:inner", handler.RemoveNestedEntry)

		f.POST("/save-draft", handler.SaveDraft)
		f.POST("/submit", handler.Submit)
		f.POST("/reset", handler.Reset)
	}
}

type ChangeStepRequest struct {
	// Step jumps directly; Direction is "next" or "previous"
	Step      int    `json:"step"`
	Direction string `json:"direction"`
}

type MoveEntryRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
	// Index and Nested address a list inside an entry, e.g. technicalSkills[Index].skills
	Index  *int   `json:"index,omitempty"`
	Nested string `json:"nested,omitempty"`
}

type SaveRequest struct {
	PortfolioID string `json:"portfolioId"`
}

func (h *FormHandler) engine(c *gin.Context) (*form.Engine, string, bool) {
	userID := c.GetString(string(domain.KeyUserID))
	e, err := h.registry.Engine(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return nil, "", false
	}
	return e, userID, true
}

// GetState handles GET /v1/portfolio/form.
func (h *FormHandler) GetState(c *gin.Context) {
	e, _, ok := h.engine(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, "Form state", e.State())
}

// UpdateDraft handles PATCH /v1/portfolio/form/draft.
func (h *FormHandler) UpdateDraft(c *gin.Context) {
	e, _, ok := h.engine(c)
	if !ok {
		return
	}
	body, err := readBody(c)
	if err != nil {
		c.Error(err)
		return
	}
	if err := e.UpdateStepData(body); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Draft updated", e.State())
}

// ChangeStep handles PUT /v1/portfolio/form/step.
func (h *FormHandler) ChangeStep(c *gin.Context) {
	var req ChangeStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}
	e, _, ok := h.engine(c)
	if !ok {
		return
	}

	var step form.Step
	switch req.Direction {
	case "next":
		step = e.Next()
	case "previous":
		step = e.Previous()
	case "":
		step = form.Step(req.Step)
		if err := e.GoToStep(step); err != nil {
			c.Error(err)
			return
		}
	default:
		c.Error(apperror.BadRequest("direction must be next or previous"))
		return
	}
	response.Success(c, http.StatusOK, "Step changed", gin.H{"currentStep": step})
}

// ValidateStep handles POST /v1/portfolio/form/steps/:step/validate.
func (h *FormHandler) ValidateStep(c *gin.Context) {
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		c.Error(apperror.BadRequest("Step must be a number"))
		return
	}
	e, _, ok := h.engine(c)
	if !ok {
		return
	}
	result, err := e.ValidateStep(form.Step(step))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Step validated", result)
}

// ValidateAll handles POST /v1/portfolio/form/validate.
func (h *FormHandler) ValidateAll(c *gin.Context) {
	e, _, ok := h.engine(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, "Steps validated", e.ValidateAll())
}

// AppendEntry handles POST /v1/portfolio/form/arrays/:field.
func (h *FormHandler) AppendEntry(c *gin.Context) {
	e, _, ok := h.engine(c)
	if !ok {
		return
	}
	body, err := readBody(c)
	if err != nil {
		c.Error(err)
		return
	}
	if err := e.Arrays().Append(c.Param("field"), body); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Entry added", e.State())
}

// RemoveEntry handles DELETE /v1/portfolio/form/arrays/:field/:index.
func (h *FormHandler) RemoveEntry(c *gin.Context) {
	index, ok := intParam(c, "index")
	if !ok {
		return
	}
	e, _, ok := h.engine(c)
	if !ok {
		return
	}
	if err := e.Arrays().Remove(c.Param("field"), index); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Entry removed", e.State())
}

// MoveEntry handles PUT /v1/portfolio/form/arrays/:field/move.
func (h *FormHandler) MoveEntry(c *gin.Context) {
	var req MoveEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}
	e, _, ok := h.engine(c)
	if !ok {
		return
	}

	arrays := e.Arrays()
	var err error
	if req.Nested != "" {
		if req.Index == nil {
			c.Error(apperror.BadRequest("index is required with nested"))
			return
		}
		err = arrays.MoveNested(c.Param("field"), *req.Index, req.Nested, req.From, req.To)
	} else {
		err = arrays.Move(c.Param("field"), req.From, req.To)
	}
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Entry moved", e.State())
}

// AppendNestedEntry handles POST /v1/portfolio/form/arrays/:field/:index/:nested.
func (h *FormHandler) AppendNestedEntry(c *gin.Context) {
	index, ok := intParam(c, "index")
	if !ok {
		return
	}
	e, _, ok := h.engine(c)
	if !ok {
		return
	}
	body, err := readBody(c)
	if err != nil {
		c.Error(err)
		return
	}
	if err := e.Arrays().AppendNested(c.Param("field"), index, c.Param("nested"), body); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Entry added", e.State())
}

// RemoveNestedEntry handles DELETE /v1/portfolio/form/arrays/:field/:index/:nested/:inner.
func (h *FormHandler) RemoveNestedEntry(c *gin.Context) {
	index, ok := intParam(c, "index")
	if !ok {
		return
	}
	inner, ok := intParam(c, "inner")
	if !ok {
		return
	}
	e, _, ok := h.engine(c)
	if !ok {
		return
	}
	if err := e.Arrays().RemoveNested(c.Param("field"), index, c.Param("nested"), inner); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Entry removed", e.State())
}

// SaveDraft handles POST /v1/portfolio/form/save-draft.
func (h *FormHandler) SaveDraft(c *gin.Context) {
	h.save(c, false)
}

// Submit handles POST /v1/portfolio/form/submit.
func (h *FormHandler) Submit(c *gin.Context) {
	h.save(c, true)
}

func (h *FormHandler) save(c *gin.Context, publish bool) {
	var req SaveRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperror.BadRequest(err.Error()))
			return
		}
	}
	e, userID, ok := h.engine(c)
	if !ok {
		return
	}

	var (
		saved *domain.Portfolio
		err   error
	)
	if publish {
		saved, err = e.Submit(c.Request.Context(), userID, req.PortfolioID)
	} else {
		saved, err = e.SaveDraft(c.Request.Context(), userID, req.PortfolioID)
	}
	if err != nil {
		c.Error(err)
		return
	}

	message := "Draft saved"
	if publish {
		message = "Portfolio published"
	}
	response.Success(c, http.StatusOK, message, saved)
}

// Reset handles POST /v1/portfolio/form/reset.
func (h *FormHandler) Reset(c *gin.Context) {
	e, _, ok := h.engine(c)
	if !ok {
		return
	}
	e.Reset()
	response.Success(c, http.StatusOK, "Form reset", e.State())
}

func readBody(c *gin.Context) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxDraftBody+1))
	if err != nil {
		return nil, apperror.BadRequest("Could not read request body")
	}
	if len(body) > maxDraftBody {
		return nil, apperror.New(http.StatusRequestEntityTooLarge, "Request body too large", nil)
	}
	return body, nil
}

func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.Error(apperror.BadRequest(name + " must be a number"))
		return 0, false
	}
	return v, true
}
