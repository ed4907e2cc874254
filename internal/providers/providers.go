package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lehigh-university-libraries/carcustomizer/internal/models"
)

var (
	// ErrTransport means the remote capability could not be reached or refused the call
	ErrTransport = errors.New("remote edit transport failure")
	// ErrNoImage means the remote capability answered without an image payload
	ErrNoImage = errors.New("no image returned by model")
)

// Config represents the configuration for an image editing provider
type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	// Timeout bounds a single HTTP edit call; zero means no limit
	Timeout time.Duration
}

// Editor defines the interface for a remote image editing capability.
// The base image may be a freshly loaded photo or a previous edit result.
type Editor interface {
	Edit(ctx context.Context, img models.Image, instruction string) (models.Image, error)
}

// EditFunc adapts a function to the Editor interface
type EditFunc func(ctx context.Context, img models.Image, instruction string) (models.Image, error)

func (f EditFunc) Edit(ctx context.Context, img models.Image, instruction string) (models.Image, error) {
	return f(ctx, img, instruction)
}

// EditError is the failure of a single remote edit call
type EditError struct {
	Provider string
	Kind     error
	Err      error
}

func (e *EditError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Provider, e.Kind, e.Err)
}

func (e *EditError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// TransportError wraps err as a transport failure of provider
func TransportError(provider string, err error) error {
	return &EditError{Provider: provider, Kind: ErrTransport, Err: err}
}

// NoImageError reports a response without image data; detail may be empty
func NoImageError(provider, detail string) error {
	e := &EditError{Provider: provider, Kind: ErrNoImage}
	if detail != "" {
		e.Err = errors.New(detail)
	}
	return e
}
