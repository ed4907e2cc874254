package registry

import (
	"errors"
	"fmt"
	"slices"

	"github.com/lehigh-university-libraries/carcustomizer/internal/models"
)

var (
	ErrViewNotFound = errors.New("view not found")
	ErrViewPending  = errors.New("view already has an edit in flight")
)

// State is an immutable snapshot of every tracked view in canonical order.
// Transformations return a new State and never modify the receiver.
type State struct {
	views []models.View
}

// NewState orders views canonically. Unknown or duplicate viewpoints are rejected.
func NewState(views []models.View) (State, error) {
	seen := make(map[models.ViewID]bool, len(views))
	ordered := make([]models.View, 0, len(views))
	for _, v := range views {
		if !v.ID.Valid() {
			return State{}, fmt.Errorf("unknown viewpoint %q", v.ID)
		}
		if seen[v.ID] {
			return State{}, fmt.Errorf("duplicate viewpoint %q", v.ID)
		}
		seen[v.ID] = true
		ordered = append(ordered, v)
	}
	slices.SortFunc(ordered, func(a, b models.View) int {
		return a.ID.Rank() - b.ID.Rank()
	})
	return State{views: ordered}, nil
}

// Len returns the number of views
func (s State) Len() int {
	return len(s.views)
}

// All returns a copy of the views in canonical order
func (s State) All() []models.View {
	return slices.Clone(s.views)
}

// IDs returns the viewpoints in canonical order
func (s State) IDs() []models.ViewID {
	ids := make([]models.ViewID, len(s.views))
	for i, v := range s.views {
		ids[i] = v.ID
	}
	return ids
}

func (s State) Get(id models.ViewID) (models.View, bool) {
	i := s.index(id)
	if i < 0 {
		return models.View{}, false
	}
	return s.views[i], true
}

// AnyPending reports whether some view has an edit in flight
func (s State) AnyPending() bool {
	for _, v := range s.views {
		if v.Status.Kind == models.StatusPending {
			return true
		}
	}
	return false
}

// MarkPending moves the given views to Pending, clearing any prior error.
// It fails without changes if a view is unknown or already Pending.
func (s State) MarkPending(ids ...models.ViewID) (State, error) {
	for _, id := range ids {
		v, ok := s.Get(id)
		if !ok {
			return s, fmt.Errorf("%w: %s", ErrViewNotFound, id)
		}
		if v.Status.Kind == models.StatusPending {
			return s, fmt.Errorf("%w: %s", ErrViewPending, id)
		}
	}
	return s.update(ids, func(v *models.View) {
		v.Status = models.Pending()
	}), nil
}

// ApplyResult replaces the current image of a view and returns it to Idle
func (s State) ApplyResult(id models.ViewID, img models.Image) (State, error) {
	if s.index(id) < 0 {
		return s, fmt.Errorf("%w: %s", ErrViewNotFound, id)
	}
	return s.update([]models.ViewID{id}, func(v *models.View) {
		v.Current = img
		v.Status = models.Idle()
	}), nil
}

// ApplyError records a failed edit; the current image is left as it was
func (s State) ApplyError(id models.ViewID, reason string) (State, error) {
	if s.index(id) < 0 {
		return s, fmt.Errorf("%w: %s", ErrViewNotFound, id)
	}
	return s.update([]models.ViewID{id}, func(v *models.View) {
		v.Status = models.Failed(reason)
	}), nil
}

// ResetAll restores every current image to its original and clears every status
func (s State) ResetAll() State {
	return s.update(s.IDs(), func(v *models.View) {
		v.Current = v.Original
		v.Status = models.Idle()
	})
}

func (s State) index(id models.ViewID) int {
	return slices.IndexFunc(s.views, func(v models.View) bool {
		return v.ID == id
	})
}

func (s State) update(ids []models.ViewID, fn func(v *models.View)) State {
	next := slices.Clone(s.views)
	for i := range next {
		if slices.Contains(ids, next[i].ID) {
			fn(&next[i])
		}
	}
	return State{views: next}
}
