package registry

import (
	"sync"

	"github.com/lehigh-university-libraries/carcustomizer/internal/models"
)

// Registry owns the view state of one editing session.
// Every mutation goes through a State transformation under the lock.
type Registry struct {
	mu    sync.RWMutex
	state State
}

// New creates a registry from bootstrapped views
func New(views []models.View) (*Registry, error) {
	state, err := NewState(views)
	if err != nil {
		return nil, err
	}
	return &Registry{state: state}, nil
}

// Snapshot returns the current state value
func (r *Registry) Snapshot() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

func (r *Registry) Get(id models.ViewID) (models.View, bool) {
	return r.Snapshot().Get(id)
}

// GetAll returns the views in canonical order
func (r *Registry) GetAll() []models.View {
	return r.Snapshot().All()
}

// Update applies fn atomically. The state is replaced only when fn succeeds.
func (r *Registry) Update(fn func(State) (State, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next, err := fn(r.state)
	if err != nil {
		return err
	}
	r.state = next
	return nil
}

func (r *Registry) MarkPending(ids ...models.ViewID) error {
	return r.Update(func(s State) (State, error) {
		return s.MarkPending(ids...)
	})
}

func (r *Registry) ApplyResult(id models.ViewID, img models.Image) error {
	return r.Update(func(s State) (State, error) {
		return s.ApplyResult(id, img)
	})
}

func (r *Registry) ApplyError(id models.ViewID, reason string) error {
	return r.Update(func(s State) (State, error) {
		return s.ApplyError(id, reason)
	})
}

func (r *Registry) ResetAll() {
	_ = r.Update(func(s State) (State, error) {
		return s.ResetAll(), nil
	})
}

// Current returns the latest image of a view for download
func (r *Registry) Current(id models.ViewID) (models.Image, bool) {
	v, ok := r.Get(id)
	if !ok {
		return models.Image{}, false
	}
	return v.Current, true
}
