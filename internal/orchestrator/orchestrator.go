package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/carcustomizer/internal/models"
	"github.com/lehigh-university-libraries/carcustomizer/internal/providers"
	"github.com/lehigh-university-libraries/carcustomizer/internal/registry"
)

// SystemSuffix is appended once to every instruction sent to the model
const SystemSuffix = "Modify ONLY the specified part of the car. Keep everything else identical. Return ONLY the edited image."

// FailureReason is the message recorded on a view whose edit failed
const FailureReason = "Failed to modify"

var (
	ErrBusy             = errors.New("a modification is already in progress")
	ErrEmptyInstruction = errors.New("modification has no instruction")
	ErrNoViews          = errors.New("no views to modify")
)

// Outcome is the resolution of one view within a batch
type Outcome struct {
	View     models.ViewID
	Err      error
	Duration time.Duration
}

// Orchestrator fans a modification out over every view of a registry
type Orchestrator struct {
	registry *registry.Registry
	editor   providers.Editor

	mu     sync.Mutex
	active *models.Modification
}

func New(reg *registry.Registry, editor providers.Editor) *Orchestrator {
	return &Orchestrator{
		registry: reg,
		editor:   editor,
	}
}

func (o *Orchestrator) Registry() *registry.Registry {
	return o.registry
}

// Busy reports whether a batch is outstanding
func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active != nil
}

// Active returns the modification being applied, if any
func (o *Orchestrator) Active() (models.Modification, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active == nil {
		return models.Modification{}, false
	}
	return *o.active, true
}

func (o *Orchestrator) begin(mod models.Modification) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active != nil {
		return false
	}
	o.active = &mod
	return true
}

func (o *Orchestrator) end() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.active = nil
}

// Apply edits every view with mod, each on top of its current image.
// Per-view failures are recorded on the view and reported in the outcomes;
// the returned error covers only batch-level refusals.
// Batches are not cancellable: the caller's cancellation is detached.
func (o *Orchestrator) Apply(ctx context.Context, mod models.Modification) ([]Outcome, error) {
	if err := o.claim(mod); err != nil {
		return nil, err
	}
	defer o.end()
	return o.run(ctx, mod)
}

// Batch is the result of a modification started with Start
type Batch struct {
	Outcomes []Outcome
	Err      error
}

// Start claims the orchestrator for mod and applies it in the background.
// ErrBusy and ErrEmptyInstruction are returned synchronously; the channel
// receives exactly one Batch once every view has resolved.
func (o *Orchestrator) Start(ctx context.Context, mod models.Modification) (<-chan Batch, error) {
	if err := o.claim(mod); err != nil {
		return nil, err
	}
	done := make(chan Batch, 1)
	go func() {
		defer close(done)
		defer o.end()
		outcomes, err := o.run(ctx, mod)
		done <- Batch{Outcomes: outcomes, Err: err}
	}()
	return done, nil
}

func (o *Orchestrator) claim(mod models.Modification) error {
	if strings.TrimSpace(mod.Instruction) == "" {
		return ErrEmptyInstruction
	}
	if !o.begin(mod) {
		return ErrBusy
	}
	return nil
}

func (o *Orchestrator) run(ctx context.Context, mod models.Modification) ([]Outcome, error) {
	snapshot := o.registry.Snapshot()
	if snapshot.Len() == 0 {
		return nil, ErrNoViews
	}
	if err := o.registry.MarkPending(snapshot.IDs()...); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBusy, err)
	}

	ctx = context.WithoutCancel(ctx)
	instruction := WithSystemSuffix(mod.Instruction)
	views := snapshot.All()

	slog.Info("Applying modification", "category", mod.Category, "value", mod.DisplayValue, "views", len(views))

	var wg sync.WaitGroup
	outcomes := make([]Outcome, len(views))
	for i, view := range views {
		wg.Add(1)
		go func(idx int, view models.View) {
			defer wg.Done()
			outcomes[idx] = o.editView(ctx, view, instruction)
		}(i, view)
	}
	wg.Wait()

	return outcomes, nil
}

func (o *Orchestrator) editView(ctx context.Context, view models.View, instruction string) Outcome {
	start := time.Now()
	out := Outcome{View: view.ID}

	img, err := o.editor.Edit(ctx, view.Current, instruction)
	if err == nil && img.Empty() {
		err = providers.NoImageError("orchestrator", "empty image payload")
	}
	out.Duration = time.Since(start)

	if err != nil {
		slog.Error("Error processing view", "view", view.ID, "err", err)
		out.Err = err
		if aerr := o.registry.ApplyError(view.ID, FailureReason); aerr != nil {
			slog.Error("Unable to record view error", "view", view.ID, "err", aerr)
		}
		return out
	}

	if aerr := o.registry.ApplyResult(view.ID, img); aerr != nil {
		slog.Error("Unable to record view result", "view", view.ID, "err", aerr)
		out.Err = aerr
		return out
	}
	slog.Info("View modified", "view", view.ID, "mime_type", img.MIMEType, "bytes", len(img.Data), "duration", out.Duration)
	return out
}

// Reset restores every view to its original photo
func (o *Orchestrator) Reset() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active != nil {
		return ErrBusy
	}
	o.registry.ResetAll()
	return nil
}

// WithSystemSuffix joins an instruction with SystemSuffix
func WithSystemSuffix(instruction string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(instruction), ".")
	return trimmed + ". " + SystemSuffix
}
