package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/carcustomizer/internal/bootstrap"
	"github.com/lehigh-university-libraries/carcustomizer/internal/models"
	"github.com/lehigh-university-libraries/carcustomizer/internal/prompts"
	"github.com/lehigh-university-libraries/carcustomizer/internal/providers"
	"github.com/lehigh-university-libraries/carcustomizer/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stamp is a deterministic stand-in for the remote model
func stamp(img models.Image, instruction string) models.Image {
	return models.Image{
		Data:     append(append([]byte{}, img.Data...), []byte("|"+instruction)...),
		MIMEType: "image/png",
	}
}

var stampEditor = providers.EditFunc(func(_ context.Context, img models.Image, instruction string) (models.Image, error) {
	return stamp(img, instruction), nil
})

func failFor(ids ...models.ViewID) providers.Editor {
	return providers.EditFunc(func(_ context.Context, img models.Image, instruction string) (models.Image, error) {
		for _, id := range ids {
			if strings.HasPrefix(string(img.Data), string(id)) {
				return models.Image{}, providers.TransportError("fake", errors.New("connection reset"))
			}
		}
		return stamp(img, instruction), nil
	})
}

func newRegistry(t *testing.T, ids ...models.ViewID) *registry.Registry {
	t.Helper()
	views := make([]models.View, 0, len(ids))
	for _, id := range ids {
		views = append(views, models.NewView(id, models.Image{Data: []byte(id), MIMEType: "image/jpeg"}))
	}
	reg, err := registry.New(views)
	require.NoError(t, err)
	return reg
}

func mod(instruction string) models.Modification {
	return models.Modification{Category: models.CategoryPaint, DisplayValue: instruction, Instruction: instruction}
}

func TestApplyCompoundsEdits(t *testing.T) {
	reg := newRegistry(t, models.ViewFront, models.ViewSide, models.ViewRear)
	o := New(reg, stampEditor)

	_, err := o.Apply(context.Background(), mod("paint it red"))
	require.NoError(t, err)
	_, err = o.Apply(context.Background(), mod("add a widebody kit"))
	require.NoError(t, err)

	for _, v := range reg.GetAll() {
		want := stamp(stamp(v.Original, WithSystemSuffix("paint it red")), WithSystemSuffix("add a widebody kit"))
		assert.Equal(t, want, v.Current)
		assert.Equal(t, models.Idle(), v.Status)
	}

	require.NoError(t, o.Reset())
	for _, v := range reg.GetAll() {
		assert.Equal(t, v.Original, v.Current)
	}
}

func TestApplyIsolatesPerViewFailure(t *testing.T) {
	reg := newRegistry(t, models.ViewFront, models.ViewSide, models.ViewRear)
	o := New(reg, failFor(models.ViewSide))

	outcomes, err := o.Apply(context.Background(), mod("paint it red"))
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	for _, out := range outcomes {
		if out.View == models.ViewSide {
			assert.ErrorIs(t, out.Err, providers.ErrTransport)
		} else {
			assert.NoError(t, out.Err)
		}
	}

	side, _ := reg.Get(models.ViewSide)
	assert.Equal(t, models.StatusError, side.Status.Kind)
	assert.Equal(t, FailureReason, side.Status.Reason)
	assert.Equal(t, side.Original, side.Current)

	front, _ := reg.Get(models.ViewFront)
	assert.Equal(t, models.Idle(), front.Status)
	assert.Equal(t, stamp(front.Original, WithSystemSuffix("paint it red")), front.Current)
}

func TestApplyWithAlwaysFailingEditor(t *testing.T) {
	reg := newRegistry(t, models.ViewFront, models.ViewRear)
	o := New(reg, stampEditor)
	_, err := o.Apply(context.Background(), mod("first"))
	require.NoError(t, err)
	before := reg.GetAll()

	o = New(reg, providers.EditFunc(func(context.Context, models.Image, string) (models.Image, error) {
		return models.Image{}, providers.NoImageError("fake", "")
	}))
	_, err = o.Apply(context.Background(), mod("second"))
	require.NoError(t, err)

	for i, v := range reg.GetAll() {
		assert.Equal(t, models.StatusError, v.Status.Kind)
		assert.Equal(t, before[i].Current, v.Current)
	}
	assert.False(t, o.Busy())
}

func TestApplyRetryClearsError(t *testing.T) {
	reg := newRegistry(t, models.ViewFront)
	_, err := New(reg, failFor(models.ViewFront)).Apply(context.Background(), mod("red"))
	require.NoError(t, err)

	front, _ := reg.Get(models.ViewFront)
	require.Equal(t, models.StatusError, front.Status.Kind)

	_, err = New(reg, stampEditor).Apply(context.Background(), mod("red"))
	require.NoError(t, err)
	front, _ = reg.Get(models.ViewFront)
	assert.Equal(t, models.Idle(), front.Status)
}

func TestApplyTreatsEmptyImageAsFailure(t *testing.T) {
	reg := newRegistry(t, models.ViewFront)
	o := New(reg, providers.EditFunc(func(context.Context, models.Image, string) (models.Image, error) {
		return models.Image{MIMEType: "image/png"}, nil
	}))

	outcomes, err := o.Apply(context.Background(), mod("red"))
	require.NoError(t, err)
	assert.ErrorIs(t, outcomes[0].Err, providers.ErrNoImage)
}

func TestApplyFansOutConcurrentlyAndRefusesOverlap(t *testing.T) {
	reg := newRegistry(t, models.ViewFront, models.ViewSide, models.ViewRear)

	started := make(chan models.ViewID, 3)
	release := make(chan struct{})
	o := New(reg, providers.EditFunc(func(_ context.Context, img models.Image, instruction string) (models.Image, error) {
		started <- models.ViewID(img.Data)
		<-release
		return stamp(img, instruction), nil
	}))

	done := make(chan error, 1)
	go func() {
		_, err := o.Apply(context.Background(), mod("matte black"))
		done <- err
	}()

	for i := 0; i < 3; i++ {
		select {
		case <-started:
		case <-time.After(2 * time.Second):
			t.Fatalf("Expected 3 concurrent edit calls, got %d", i)
		}
	}

	assert.True(t, o.Busy())
	active, ok := o.Active()
	assert.True(t, ok)
	assert.Equal(t, "matte black", active.Instruction)
	for _, v := range reg.GetAll() {
		assert.Equal(t, models.StatusPending, v.Status.Kind)
	}

	_, err := o.Apply(context.Background(), mod("chrome"))
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, o.Reset(), ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, o.Busy())
	_, ok = o.Active()
	assert.False(t, ok)
}

func TestApplySendsSuffixOnce(t *testing.T) {
	reg := newRegistry(t, models.ViewFront, models.ViewRear)

	var mu sync.Mutex
	var seen []string
	o := New(reg, providers.EditFunc(func(_ context.Context, img models.Image, instruction string) (models.Image, error) {
		mu.Lock()
		seen = append(seen, instruction)
		mu.Unlock()
		return stamp(img, instruction), nil
	}))

	_, err := o.Apply(context.Background(), mod("change the wheels to chrome deep dish rims."))
	require.NoError(t, err)

	require.Len(t, seen, 2)
	for _, instruction := range seen {
		assert.Equal(t, 1, strings.Count(instruction, SystemSuffix))
		assert.Equal(t, "change the wheels to chrome deep dish rims. "+SystemSuffix, instruction)
	}
}

func TestApplyRejectsEmptyInstruction(t *testing.T) {
	o := New(newRegistry(t, models.ViewFront), stampEditor)
	_, err := o.Apply(context.Background(), mod("   "))
	assert.ErrorIs(t, err, ErrEmptyInstruction)
	assert.False(t, o.Busy())
}

func TestStartRunsInBackground(t *testing.T) {
	reg := newRegistry(t, models.ViewFront, models.ViewRear)
	release := make(chan struct{})
	o := New(reg, providers.EditFunc(func(_ context.Context, img models.Image, instruction string) (models.Image, error) {
		<-release
		return stamp(img, instruction), nil
	}))

	done, err := o.Start(context.Background(), mod("gold"))
	require.NoError(t, err)
	assert.True(t, o.Busy())

	_, err = o.Start(context.Background(), mod("silver"))
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	batch := <-done
	require.NoError(t, batch.Err)
	assert.Len(t, batch.Outcomes, 2)
	assert.False(t, o.Busy())

	_, open := <-done
	assert.False(t, open)

	_, err = o.Start(context.Background(), mod(""))
	assert.ErrorIs(t, err, ErrEmptyInstruction)
}

func TestApplyIgnoresCallerCancellation(t *testing.T) {
	reg := newRegistry(t, models.ViewFront)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := New(reg, providers.EditFunc(func(ctx context.Context, img models.Image, instruction string) (models.Image, error) {
		if err := ctx.Err(); err != nil {
			return models.Image{}, err
		}
		return stamp(img, instruction), nil
	}))

	outcomes, err := o.Apply(ctx, mod("red"))
	require.NoError(t, err)
	assert.NoError(t, outcomes[0].Err)
}

func TestFrontAndRearFullBodyPaintScenario(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4))))
	photo := buf.Bytes()

	views, err := bootstrap.Bootstrap(context.Background(), map[models.ViewID]bootstrap.File{
		models.ViewRear:  {Name: "rear.png", Reader: bytes.NewReader(photo)},
		models.ViewFront: {Name: "front.png", Reader: bytes.NewReader(photo)},
	}, bootstrap.Options{})
	require.NoError(t, err)

	reg, err := registry.New(views)
	require.NoError(t, err)
	require.Equal(t, []models.ViewID{models.ViewFront, models.ViewRear}, reg.Snapshot().IDs())

	var mu sync.Mutex
	var instructions []string
	o := New(reg, providers.EditFunc(func(_ context.Context, img models.Image, instruction string) (models.Image, error) {
		mu.Lock()
		instructions = append(instructions, instruction)
		mu.Unlock()
		return stamp(img, instruction), nil
	}))

	m := prompts.Build(prompts.Request{Category: models.CategoryPaint, Part: prompts.PartFullBody, Color: "cherry red pearl"})
	_, err = o.Apply(context.Background(), m)
	require.NoError(t, err)

	for _, v := range reg.GetAll() {
		assert.NotEqual(t, v.Original, v.Current)
		assert.Equal(t, models.Idle(), v.Status)
	}
	require.Len(t, instructions, 2)
	for _, instruction := range instructions {
		assert.Contains(t, instruction, "cherry red pearl")
		for _, panel := range []string{"bumper", "side skirts", "fenders", "hood", "roof", "door"} {
			assert.Contains(t, instruction, panel)
		}
	}
}
