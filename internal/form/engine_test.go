package form_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/form"
	"portfolio-backend/internal/repository/document"
	"portfolio-backend/internal/repository/memory"
	"portfolio-backend/internal/usecase"
	"portfolio-backend/pkg/apperror"
	"portfolio-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ownerCtx(userID string) context.Context {
	return context.WithValue(context.Background(), domain.KeyUserID, userID)
}

func newPortfolioService() domain.PortfolioUsecase {
	return usecase.NewPortfolioUsecase(document.NewPortfolioRepository(memory.NewDocumentGateway()))
}

// blockingStore holds every save until release is closed.
type blockingStore struct {
	entered chan struct{}
	release chan struct{}
	calls   int
	mu      sync.Mutex
}

func newBlockingStore() *blockingStore {
	return &blockingStore{entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (s *blockingStore) save(status string, userID string) (*domain.Portfolio, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	s.entered <- struct{}{}
	<-s.release
	return &domain.Portfolio{UserID: userID, Status: status, UpdatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}, nil
}

func (s *blockingStore) SaveDraft(_ context.Context, userID string, _ domain.PortfolioContent) (*domain.Portfolio, error) {
	return s.save(domain.PortfolioStatusDraft, userID)
}

func (s *blockingStore) Publish(_ context.Context, userID string, _ domain.PortfolioContent) (*domain.Portfolio, error) {
	return s.save(domain.PortfolioStatusPublished, userID)
}

type failingStore struct{}

func (failingStore) SaveDraft(context.Context, string, domain.PortfolioContent) (*domain.Portfolio, error) {
	return nil, apperror.Persistence("Failed to save portfolio", errors.New("connection refused"))
}

func (failingStore) Publish(context.Context, string, domain.PortfolioContent) (*domain.Portfolio, error) {
	return nil, apperror.Persistence("Failed to save portfolio", errors.New("connection refused"))
}

func TestEngineNavigation(t *testing.T) {
	e := form.NewEngine(form.NewSession(form.NewEmptyDraft()), failingStore{}, validation.New())

	assert.Equal(t, form.StepPersonalInfo, e.State().CurrentStep)
	assert.Equal(t, form.StepPersonalInfo, e.Previous())
	assert.Equal(t, form.StepEducation, e.Next())
	assert.Equal(t, form.StepSkillsExperience, e.Next())
	assert.Equal(t, form.StepProjects, e.Next())
	assert.Equal(t, form.StepProjects, e.Next())

	require.NoError(t, e.GoToStep(form.StepEducation))
	assert.Equal(t, form.StepEducation, e.State().CurrentStep)

	err := e.GoToStep(form.Step(5))
	assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	assert.Equal(t, form.StepEducation, e.State().CurrentStep)
	assert.Equal(t, form.StepCount, e.State().StepCount)
}

func TestEngineValidation(t *testing.T) {
	e := form.NewEngine(form.NewSession(form.NewEmptyDraft()), failingStore{}, validation.New())

	t.Run("Step results are recorded", func(t *testing.T) {
		result, err := e.ValidateStep(form.StepPersonalInfo)
		require.NoError(t, err)
		assert.False(t, result.IsValid)
		assert.Equal(t, result, e.State().StepValidation[form.StepPersonalInfo])
	})

	t.Run("Updating data does not validate", func(t *testing.T) {
		require.NoError(t, e.UpdateStepData([]byte(`{"fullName":"Jane Doe","email":"jane@example.com","title":"Engineer"}`)))
		assert.False(t, e.State().StepValidation[form.StepPersonalInfo].IsValid)

		result, err := e.ValidateStep(form.StepPersonalInfo)
		require.NoError(t, err)
		assert.True(t, result.IsValid)
	})

	t.Run("Invalid step number", func(t *testing.T) {
		_, err := e.ValidateStep(form.Step(0))
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	})

	t.Run("ValidateAll covers every step", func(t *testing.T) {
		results := e.ValidateAll()
		require.Len(t, results, form.StepCount)
		assert.True(t, results[0].IsValid)
		assert.False(t, results[1].IsValid)
		assert.Len(t, e.State().StepValidation, form.StepCount)
	})
}

func TestEngineSaveAndLoad(t *testing.T) {
	svc := newPortfolioService()
	ctx := ownerCtx("user1")
	e := form.NewEngine(form.NewSession(form.NewEmptyDraft()), svc, validation.New())

	job := domain.WorkExperience{
		Company: "Acme", Position: "Engineer", StartDate: "2020-01-01", IsCurrentRole: true,
		Responsibilities: []string{"Built APIs"}, Technologies: []string{"TypeScript"},
	}
	require.NoError(t, e.Session().UpdateDraft(func(d *domain.PortfolioFormData) error {
		d.WorkExperience = []domain.WorkExperience{job}
		return nil
	}))

	t.Run("Draft saves need no valid steps", func(t *testing.T) {
		saved, err := e.SaveDraft(ctx, "user1", "")
		require.NoError(t, err)
		assert.Equal(t, domain.PortfolioStatusDraft, saved.Status)

		state := e.State()
		require.NotNil(t, state.LastSavedAt)
		assert.Equal(t, domain.PortfolioStatusDraft, state.PortfolioStatus)
		assert.False(t, state.Saving)
	})

	t.Run("Loading the saved portfolio restores the work experience", func(t *testing.T) {
		stored, err := svc.GetOwn(ctx, "user1")
		require.NoError(t, err)

		fresh := form.NewEngine(form.NewSession(form.NewEmptyDraft()), svc, validation.New())
		fresh.Load(stored)

		d := fresh.State().Draft
		require.Len(t, d.WorkExperience, 1)
		assert.Equal(t, job, d.WorkExperience[0])
		assert.Equal(t, domain.PortfolioStatusDraft, fresh.State().PortfolioStatus)
	})

	t.Run("Portfolio id must be the caller's", func(t *testing.T) {
		_, err := e.SaveDraft(ctx, "user1", "someone-else")
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	})
}

func TestEngineSubmit(t *testing.T) {
	svc := newPortfolioService()
	ctx := ownerCtx("user1")

	t.Run("Submit fails closed on invalid steps", func(t *testing.T) {
		e := form.NewEngine(form.NewSession(form.NewEmptyDraft()), svc, validation.New())
		_, err := e.Submit(ctx, "user1", "")
		assert.Equal(t, http.StatusUnprocessableEntity, apperror.CodeOf(err))
		assert.Contains(t, err.Error(), "Personal Info")

		var appErr *apperror.AppError
		require.True(t, errors.As(err, &appErr))
		assert.NotEmpty(t, appErr.Details)

		_, err = svc.GetOwn(ctx, "user1")
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("Submit publishes a complete draft", func(t *testing.T) {
		e := form.NewEngine(form.NewSession(completeDraft()), svc, validation.New())
		saved, err := e.Submit(ctx, "user1", "user1")
		require.NoError(t, err)
		assert.True(t, saved.IsPublic)
		assert.Equal(t, domain.PortfolioStatusPublished, e.State().PortfolioStatus)
	})
}

func TestEngineFailedSaveKeepsDraft(t *testing.T) {
	e := form.NewEngine(form.NewSession(form.NewEmptyDraft()), failingStore{}, validation.New())
	require.NoError(t, e.UpdateStepData([]byte(`{"fullName":"Jane"}`)))

	_, err := e.SaveDraft(ownerCtx("user1"), "user1", "")
	assert.Equal(t, http.StatusServiceUnavailable, apperror.CodeOf(err))

	state := e.State()
	assert.Equal(t, "Jane", state.Draft.FullName)
	assert.Nil(t, state.LastSavedAt)
	assert.False(t, state.Saving)
}

func TestEngineRejectsConcurrentSaves(t *testing.T) {
	store := newBlockingStore()
	e := form.NewEngine(form.NewSession(completeDraft()), store, validation.New())
	ctx := ownerCtx("user1")

	done := make(chan error, 1)
	go func() {
		_, err := e.Submit(ctx, "user1", "")
		done <- err
	}()
	<-store.entered

	assert.True(t, e.State().Saving)
	_, err := e.Submit(ctx, "user1", "")
	assert.Equal(t, http.StatusConflict, apperror.CodeOf(err))
	_, err = e.SaveDraft(ctx, "user1", "")
	assert.Equal(t, http.StatusConflict, apperror.CodeOf(err))

	close(store.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, store.calls)

	state := e.State()
	assert.False(t, state.Saving)
	require.NotNil(t, state.LastSavedAt)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *state.LastSavedAt)
}

func TestEngineReset(t *testing.T) {
	svc := newPortfolioService()
	e := form.NewEngine(form.NewSession(completeDraft()), svc, validation.New())
	ctx := ownerCtx("user1")

	_, err := e.SaveDraft(ctx, "user1", "")
	require.NoError(t, err)
	e.Next()
	e.ValidateAll()

	e.Reset()

	state := e.State()
	assert.Equal(t, form.NewEmptyDraft(), state.Draft)
	assert.Equal(t, form.StepPersonalInfo, state.CurrentStep)
	assert.Empty(t, state.StepValidation)
	assert.NotNil(t, state.LastSavedAt)
}
