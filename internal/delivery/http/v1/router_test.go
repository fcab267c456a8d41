package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"portfolio-backend/config"
	v1 "portfolio-backend/internal/delivery/http/v1"
	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/form"
	"portfolio-backend/internal/repository"
	"portfolio-backend/internal/usecase"
	"portfolio-backend/pkg/auth"
	"portfolio-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "router-test-secret-0123456789abcdef"

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	store  *repository.Storage
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		AppEnv:                   "test",
		StorageDriver:            config.StorageDriverMemory,
		SupabaseJWTSecret:        testSecret,
		RateLimitWindowSeconds:   60,
		RateLimitWriteThreshold:  1000,
		RateLimitGlobalThreshold: 1000,
	}
	store, err := repository.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	validate := validation.New()
	portfolioUC := usecase.NewPortfolioUsecase(store.Portfolios)
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:       usecase.NewAuthUsecase(store.Users),
		CategoryUC:   usecase.NewCategoryUsecase(store.Categories, store.Requests, validate),
		PortfolioUC:  portfolioUC,
		FormRegistry: form.NewRegistry(portfolioUC, validate),
		JWKSProvider: auth.NewProvider(""),
		Config:       cfg,
	})
	return &testAPI{t: t, router: router, store: store}
}

func (a *testAPI) makeAdmin(userID string) {
	a.t.Helper()
	require.NoError(a.t, a.store.Users.Create(context.Background(), &domain.User{
		ID: userID, Email: userID + "@example.com", Role: domain.RoleAdmin,
	}))
}

func (a *testAPI) token(userID string) string {
	a.t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID,
		"email": userID + "@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(a.t, err)
	return token
}

func (a *testAPI) do(method, path, userID string, body interface{}) (int, apiResponse) {
	a.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+a.token(userID))
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	code, resp := api.do(http.MethodGet, "/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"storage":"ok","rateLimit":"memory"}`, string(resp.Data))
}

func TestSwaggerRouteIsNotServed(t *testing.T) {
	api := newTestAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/swagger/index.html", nil)
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCategoryRequestFlow(t *testing.T) {
	api := newTestAPI(t)
	api.makeAdmin("admin1")

	code, resp := api.do(http.MethodPost, "/v1/category-requests", "user1", map[string]interface{}{
		"categoryName":    "Cloud Computing",
		"suggestedSkills": []string{"AWS", "Azure"},
	})
	require.Equal(t, http.StatusCreated, code, resp.Message)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &created))

	t.Run("Empty names are a validation error", func(t *testing.T) {
		code, resp := api.do(http.MethodPost, "/v1/category-requests", "user1", map[string]interface{}{"categoryName": " "})
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Contains(t, string(resp.Error), "categoryName")
	})

	t.Run("Anonymous submissions are refused", func(t *testing.T) {
		code, _ := api.do(http.MethodPost, "/v1/category-requests", "", map[string]interface{}{"categoryName": "X"})
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("Non-admins cannot reach admin routes", func(t *testing.T) {
		code, _ := api.do(http.MethodPost, "/v1/admin/category-requests/"+created.ID+"/approve", "user1", nil)
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("Admin sees the pending request once", func(t *testing.T) {
		code, resp := api.do(http.MethodGet, "/v1/admin/category-requests?status=PENDING", "admin1", nil)
		require.Equal(t, http.StatusOK, code)
		var page struct {
			Requests []domain.CategoryRequest `json:"requests"`
			Total    int                      `json:"total"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &page))
		assert.Equal(t, 1, page.Total)
		assert.Equal(t, "Cloud Computing", page.Requests[0].CategoryName)
	})

	t.Run("Approval publishes the category", func(t *testing.T) {
		code, _ := api.do(http.MethodPost, "/v1/admin/category-requests/"+created.ID+"/approve", "admin1", nil)
		require.Equal(t, http.StatusOK, code)

		code, resp := api.do(http.MethodGet, "/v1/skill-categories", "", nil)
		require.Equal(t, http.StatusOK, code)
		var categories []domain.SkillCategory
		require.NoError(t, json.Unmarshal(resp.Data, &categories))
		require.Len(t, categories, 1)
		assert.Equal(t, "Cloud Computing", categories[0].Name)
		assert.True(t, categories[0].Approved)

		code, resp = api.do(http.MethodGet, "/v1/category-requests/"+created.ID, "user1", nil)
		require.Equal(t, http.StatusOK, code)
		var req domain.CategoryRequest
		require.NoError(t, json.Unmarshal(resp.Data, &req))
		assert.Equal(t, domain.RequestStatusApproved, req.Status)
	})

	t.Run("Rejecting an approved request conflicts", func(t *testing.T) {
		code, _ := api.do(http.MethodPost, "/v1/admin/category-requests/"+created.ID+"/reject", "admin1", map[string]string{"reason": "late"})
		assert.Equal(t, http.StatusConflict, code)
	})
}

func TestPortfolioFormFlow(t *testing.T) {
	api := newTestAPI(t)

	t.Run("New users get an empty draft at step 1", func(t *testing.T) {
		code, resp := api.do(http.MethodGet, "/v1/portfolio/form", "user1", nil)
		require.Equal(t, http.StatusOK, code)
		var state form.State
		require.NoError(t, json.Unmarshal(resp.Data, &state))
		assert.Equal(t, form.StepPersonalInfo, state.CurrentStep)
		assert.Len(t, state.Draft.Education, 1)
	})

	t.Run("Last entry of a list cannot be removed", func(t *testing.T) {
		code, _ := api.do(http.MethodDelete, "/v1/portfolio/form/arrays/education/0", "user1", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, code)

		code, _ = api.do(http.MethodDelete, "/v1/portfolio/form/arrays/hobbies/0", "user1", nil)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("Submit is refused while steps are invalid", func(t *testing.T) {
		code, resp := api.do(http.MethodPost, "/v1/portfolio/form/submit", "user1", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Contains(t, string(resp.Error), "fullName")
	})

	draft := map[string]interface{}{
		"fullName": "Jane Doe",
		"email":    "jane@example.com",
		"title":    "Backend Engineer",
		"education": []map[string]interface{}{
			{"institution": "ITB", "degree": "BSc", "startYear": 2012, "endYear": 2016},
		},
		"technicalSkills": []map[string]interface{}{
			{"category": "Languages", "skills": []string{"Go"}, "proficiency": "Advanced"},
		},
		"workExperience": []map[string]interface{}{
			{"company": "Acme", "position": "Engineer", "startDate": "2020-01-01", "isCurrentRole": true,
				"responsibilities": []string{"Built APIs"}, "technologies": []string{"TypeScript"}},
		},
		"projects": []map[string]interface{}{
			{"name": "Portfolio", "description": "This site"},
		},
	}

	t.Run("Draft is merged and validated per step", func(t *testing.T) {
		code, _ := api.do(http.MethodPatch, "/v1/portfolio/form/draft", "user1", draft)
		require.Equal(t, http.StatusOK, code)

		code, resp := api.do(http.MethodPost, "/v1/portfolio/form/steps/3/validate", "user1", nil)
		require.Equal(t, http.StatusOK, code)
		var result form.StepResult
		require.NoError(t, json.Unmarshal(resp.Data, &result))
		assert.True(t, result.IsValid, string(resp.Data))

		code, _ = api.do(http.MethodPut, "/v1/portfolio/form/step", "user1", map[string]string{"direction": "next"})
		assert.Equal(t, http.StatusOK, code)
	})

	t.Run("Unknown draft fields are rejected", func(t *testing.T) {
		code, _ := api.do(http.MethodPatch, "/v1/portfolio/form/draft", "user1", `{"nickname":"jd"}`)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("Submitting publishes the portfolio", func(t *testing.T) {
		code, resp := api.do(http.MethodPost, "/v1/portfolio/form/submit", "user1", map[string]string{"portfolioId": "user1"})
		require.Equal(t, http.StatusOK, code, string(resp.Error))

		code, resp = api.do(http.MethodGet, "/v1/portfolios/user1", "", nil)
		require.Equal(t, http.StatusOK, code)
		var p domain.Portfolio
		require.NoError(t, json.Unmarshal(resp.Data, &p))
		assert.Equal(t, "Jane Doe", p.PersonalInfo.FullName)
		assert.Equal(t, int64(1), p.VisitCount)
	})

	t.Run("Saving into someone else's portfolio is forbidden", func(t *testing.T) {
		code, _ := api.do(http.MethodPost, "/v1/portfolio/form/save-draft", "user1", map[string]string{"portfolioId": "user2"})
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("Deleting the portfolio resets the form", func(t *testing.T) {
		code, _ := api.do(http.MethodDelete, "/v1/portfolios/me", "user1", nil)
		require.Equal(t, http.StatusOK, code)

		code, _ = api.do(http.MethodGet, "/v1/portfolios/user1", "", nil)
		assert.Equal(t, http.StatusNotFound, code)

		code, resp := api.do(http.MethodGet, "/v1/portfolio/form", "user1", nil)
		require.Equal(t, http.StatusOK, code)
		var state form.State
		require.NoError(t, json.Unmarshal(resp.Data, &state))
		assert.Equal(t, "", state.Draft.FullName)
	})
}
