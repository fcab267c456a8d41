package form

import (
	"bytes"
	"encoding/json"
	"sync"

	"portfolio-backend/internal/domain"
	"portfolio-backend/pkg/apperror"
)

// Listener is called with a copy of the draft after every change.
type Listener func(draft domain.PortfolioFormData)

// Session holds one user's draft. Every step reads and writes the whole
// draft through it; callers only ever see copies.
type Session struct {
	mu        sync.RWMutex
	draft     domain.PortfolioFormData
	listeners map[int]Listener
	nextID    int
}

func NewSession(initial domain.PortfolioFormData) *Session {
	return &Session{
		draft:     cloneDraft(initial),
		listeners: make(map[int]Listener),
	}
}

func (s *Session) Draft() domain.PortfolioFormData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneDraft(s.draft)
}

// UpdateDraft applies fn to a working copy and commits it only when fn
// succeeds, so a failed edit leaves the draft untouched.
func (s *Session) UpdateDraft(fn func(draft *domain.PortfolioFormData) error) error {
	s.mu.Lock()
	working := cloneDraft(s.draft)
	if err := fn(&working); err != nil {
		s.mu.Unlock()
		return err
	}
	s.draft = working
	snapshot, listeners := s.snapshotLocked()
	s.mu.Unlock()

	notify(listeners, snapshot)
	return nil
}

// MergeJSON merges a partial draft. Keys present in patch replace the
// corresponding fields wholesale; absent keys are kept. Lists the patch
// empties or nulls get their single blank entry back.
func (s *Session) MergeJSON(patch []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil {
		return apperror.BadRequest("Invalid draft data: " + err.Error())
	}

	return s.UpdateDraft(func(draft *domain.PortfolioFormData) error {
		raw, err := json.Marshal(draft)
		if err != nil {
			return apperror.Internal(err)
		}
		var merged map[string]json.RawMessage
		if err := json.Unmarshal(raw, &merged); err != nil {
			return apperror.Internal(err)
		}
		for k, v := range fields {
			merged[k] = v
		}
		raw, err = json.Marshal(merged)
		if err != nil {
			return apperror.Internal(err)
		}

		var next domain.PortfolioFormData
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&next); err != nil {
			return apperror.BadRequest("Invalid draft data: " + err.Error())
		}
		*draft = withPlaceholders(next)
		return nil
	})
}

// Replace swaps the whole draft.
func (s *Session) Replace(draft domain.PortfolioFormData) {
	_ = s.UpdateDraft(func(d *domain.PortfolioFormData) error {
		*d = cloneDraft(draft)
		return nil
	})
}

// Subscribe registers l and returns a function that removes it.
func (s *Session) Subscribe(l Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Session) snapshotLocked() (domain.PortfolioFormData, []Listener) {
	if len(s.listeners) == 0 {
		return domain.PortfolioFormData{}, nil
	}
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	return cloneDraft(s.draft), listeners
}

func notify(listeners []Listener, draft domain.PortfolioFormData) {
	for _, l := range listeners {
		l(cloneDraft(draft))
	}
}

// cloneDraft deep-copies through JSON; nil and empty slices survive as such.
func cloneDraft(d domain.PortfolioFormData) domain.PortfolioFormData {
	raw, err := json.Marshal(d)
	if err != nil {
		return d
	}
	var out domain.PortfolioFormData
	if err := json.Unmarshal(raw, &out); err != nil {
		return d
	}
	return out
}
