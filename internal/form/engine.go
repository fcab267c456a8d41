package form

import (
	"context"
	"sync"
	"time"

	"portfolio-backend/internal/domain"
	"portfolio-backend/pkg/apperror"
	"portfolio-backend/pkg/logger"
	"portfolio-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// PortfolioStore persists the transformed draft.
type PortfolioStore interface {
	SaveDraft(ctx context.Context, userID string, content domain.PortfolioContent) (*domain.Portfolio, error)
	Publish(ctx context.Context, userID string, content domain.PortfolioContent) (*domain.Portfolio, error)
}

// State is a snapshot of an engine, as served to the client.
type State struct {
	CurrentStep     Step                     `json:"currentStep"`
	StepCount       int                      `json:"stepCount"`
	StepValidation  map[Step]StepResult      `json:"stepValidation"`
	Draft           domain.PortfolioFormData `json:"draft"`
	Saving          bool                     `json:"saving"`
	LastSavedAt     *time.Time               `json:"lastSavedAt,omitempty"`
	PortfolioStatus string                   `json:"portfolioStatus,omitempty"`
}

// Engine drives one user's multi-step form over a Session.
type Engine struct {
	session  *Session
	store    PortfolioStore
	validate *validator.Validate
	now      func() time.Time

	mu          sync.Mutex
	currentStep Step
	results     map[Step]StepResult
	saving      bool
	lastSaved   *time.Time
	status      string
}

func NewEngine(session *Session, store PortfolioStore, validate *validator.Validate) *Engine {
	return &Engine{
		session:     session,
		store:       store,
		validate:    validate,
		now:         time.Now,
		currentStep: StepPersonalInfo,
		results:     make(map[Step]StepResult),
	}
}

func (e *Engine) Session() *Session { return e.session }

func (e *Engine) Arrays() *Arrays { return NewArrays(e.session) }

// UpdateStepData merges patch into the draft without validating it.
func (e *Engine) UpdateStepData(patch []byte) error {
	return e.session.MergeJSON(patch)
}

// ValidateStep validates the current draft for step and records the result.
func (e *Engine) ValidateStep(step Step) (StepResult, error) {
	if !step.Valid() {
		return StepResult{}, apperror.BadRequest("Step must be between 1 and 4")
	}
	result, err := ValidateStep(e.validate, step, e.session.Draft())
	if err != nil {
		return StepResult{}, apperror.BadRequest(err.Error())
	}

	e.mu.Lock()
	e.results[step] = result
	e.mu.Unlock()
	return result, nil
}

// ValidateAll validates every step against one snapshot of the draft.
func (e *Engine) ValidateAll() []StepResult {
	draft := e.session.Draft()
	results := make([]StepResult, 0, StepCount)
	for step := StepPersonalInfo; step <= StepProjects; step++ {
		result, _ := ValidateStep(e.validate, step, draft)
		results = append(results, result)
	}

	e.mu.Lock()
	for _, r := range results {
		e.results[r.Step] = r
	}
	e.mu.Unlock()
	return results
}

// GoToStep allows jumping to any step; validity is only enforced on submit.
func (e *Engine) GoToStep(step Step) error {
	if !step.Valid() {
		return apperror.BadRequest("Step must be between 1 and 4")
	}
	e.mu.Lock()
	e.currentStep = step
	e.mu.Unlock()
	return nil
}

func (e *Engine) Next() Step {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.currentStep < StepProjects {
		e.currentStep++
	}
	return e.currentStep
}

func (e *Engine) Previous() Step {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.currentStep > StepPersonalInfo {
		e.currentStep--
	}
	return e.currentStep
}

// SaveDraft stores the draft privately. Step validity is not required.
func (e *Engine) SaveDraft(ctx context.Context, userID, portfolioID string) (*domain.Portfolio, error) {
	return e.persist(ctx, userID, portfolioID, false)
}

// Submit publishes the draft. It is refused while any step is invalid.
func (e *Engine) Submit(ctx context.Context, userID, portfolioID string) (*domain.Portfolio, error) {
	var errs []validation.FieldError
	var firstInvalid Step
	for _, r := range e.ValidateAll() {
		if !r.IsValid {
			errs = append(errs, r.Errors...)
			if firstInvalid == 0 {
				firstInvalid = r.Step
			}
		}
	}
	if len(errs) > 0 {
		return nil, apperror.Validation("Complete every step before publishing ("+firstInvalid.String()+" has errors)", errs)
	}
	return e.persist(ctx, userID, portfolioID, true)
}

func (e *Engine) persist(ctx context.Context, userID, portfolioID string, publish bool) (*domain.Portfolio, error) {
	if portfolioID != "" && portfolioID != userID {
		return nil, apperror.Forbidden("You can only edit your own portfolio")
	}

	e.mu.Lock()
	if e.saving {
		e.mu.Unlock()
		return nil, apperror.Conflict("A save is already in progress")
	}
	e.saving = true
	e.mu.Unlock()

	content := ToPortfolioContent(e.session.Draft())

	var (
		saved *domain.Portfolio
		err   error
	)
	if publish {
		saved, err = e.store.Publish(ctx, userID, content)
	} else {
		saved, err = e.store.SaveDraft(ctx, userID, content)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.saving = false
	if err != nil {
		// Draft stays in the session for a retry
		logger.WithError(err).Warn("Portfolio form save failed", "user_id", userID, "publish", publish)
		return nil, err
	}

	savedAt := e.now()
	if !saved.UpdatedAt.IsZero() {
		savedAt = saved.UpdatedAt
	}
	e.lastSaved = &savedAt
	e.status = saved.Status
	return saved, nil
}

func (e *Engine) inFlight() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saving
}

// Reset clears the draft and all step state. The last save time is kept.
func (e *Engine) Reset() {
	e.session.Replace(NewEmptyDraft())
	e.mu.Lock()
	e.currentStep = StepPersonalInfo
	e.results = make(map[Step]StepResult)
	e.mu.Unlock()
}

// Load replaces the draft with a stored portfolio.
func (e *Engine) Load(p *domain.Portfolio) {
	e.session.Replace(ToFormData(p.PortfolioContent))
	e.mu.Lock()
	e.currentStep = StepPersonalInfo
	e.results = make(map[Step]StepResult)
	updated := p.UpdatedAt
	e.lastSaved = &updated
	e.status = p.Status
	e.mu.Unlock()
}

func (e *Engine) State() State {
	draft := e.session.Draft()

	e.mu.Lock()
	defer e.mu.Unlock()
	results := make(map[Step]StepResult, len(e.results))
	for k, v := range e.results {
		results[k] = v
	}
	var lastSaved *time.Time
	if e.lastSaved != nil {
		t := *e.lastSaved
		lastSaved = &t
	}
	return State{
		CurrentStep:     e.currentStep,
		StepCount:       StepCount,
		StepValidation:  results,
		Draft:           draft,
		Saving:          e.saving,
		LastSavedAt:     lastSaved,
		PortfolioStatus: e.status,
	}
}
