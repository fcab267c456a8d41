package form

import (
	"context"
	"sync"
	"time"

	"portfolio-backend/internal/domain"
	"portfolio-backend/pkg/apperror"
	"portfolio-backend/pkg/logger"

	"github.com/go-playground/validator/v10"
)

// Store is what the registry needs from the portfolio service.
type Store interface {
	PortfolioStore
	GetOwn(ctx context.Context, userID string) (*domain.Portfolio, error)
}

// DefaultIdleTimeout is how long an unused engine stays in memory.
const DefaultIdleTimeout = 30 * time.Minute

// sweepEvery is how many lookups pass between sweeps of idle engines.
const sweepEvery = 256

type registryEntry struct {
	engine   *Engine
	lastUsed time.Time
}

// Registry keeps one engine per user, created on first use and seeded from
// the user's stored portfolio when there is one. Engines unused for longer
// than the idle timeout are dropped; unsaved edits in them are lost and the
// next request starts again from storage.
type Registry struct {
	store    Store
	validate *validator.Validate
	idle     time.Duration
	now      func() time.Time

	mu      sync.Mutex
	engines map[string]*registryEntry
	lookups uint64
}

func NewRegistry(store Store, validate *validator.Validate) *Registry {
	return &Registry{
		store:    store,
		validate: validate,
		idle:     DefaultIdleTimeout,
		now:      time.Now,
		engines:  make(map[string]*registryEntry),
	}
}

// WithIdleTimeout sets the idle timeout; d <= 0 disables eviction.
func (r *Registry) WithIdleTimeout(d time.Duration) *Registry {
	r.idle = d
	return r
}

func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// Engine returns the user's engine. ctx must carry the user's identity.
func (r *Registry) Engine(ctx context.Context, userID string) (*Engine, error) {
	r.mu.Lock()
	now := r.now()
	r.lookups++
	if r.lookups%sweepEvery == 0 {
		r.sweepLocked(now)
	}
	if entry, ok := r.engines[userID]; ok {
		entry.lastUsed = now
		r.mu.Unlock()
		return entry.engine, nil
	}
	r.mu.Unlock()

	stored, err := r.store.GetOwn(ctx, userID)
	if err != nil && !apperror.IsNotFound(err) {
		return nil, err
	}

	e := NewEngine(NewSession(NewEmptyDraft()), r.store, r.validate)
	if stored != nil {
		e.Load(stored)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// A concurrent first request may have won
	if existing, ok := r.engines[userID]; ok {
		existing.lastUsed = r.now()
		return existing.engine, nil
	}
	r.engines[userID] = &registryEntry{engine: e, lastUsed: r.now()}
	logger.Log.Debug("Form engine created", "user_id", userID, "from_stored", stored != nil)
	return e, nil
}

// Drop forgets the user's engine; the next request starts from storage.
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	delete(r.engines, userID)
	r.mu.Unlock()
}

// Sweep drops idle engines and returns how many went. Engines with a save in
// flight are kept.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked(r.now())
}

func (r *Registry) sweepLocked(now time.Time) int {
	if r.idle <= 0 {
		return 0
	}
	dropped := 0
	for userID, entry := range r.engines {
		if now.Sub(entry.lastUsed) < r.idle || entry.engine.inFlight() {
			continue
		}
		delete(r.engines, userID)
		dropped++
	}
	if dropped > 0 {
		logger.Log.Debug("Idle form engines dropped", "count", dropped, "remaining", len(r.engines))
	}
	return dropped
}

// RunSweeper sweeps every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.engines)
}
