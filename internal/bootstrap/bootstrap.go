package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"

	"github.com/lehigh-university-libraries/carcustomizer/internal/models"
	_ "golang.org/x/image/webp"
)

// DefaultMaxBytes limits a single uploaded photo to 10MB
const DefaultMaxBytes = 10 * 1024 * 1024

var (
	ErrEmptySelection = errors.New("no decodable vehicle photos were supplied")
	ErrDecode         = errors.New("file is not a supported image")
)

var mimeTypes = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"webp": "image/webp",
}

// File is a user-selected photo for one viewpoint
type File struct {
	Name   string
	Reader io.Reader
}

// DecodeError describes a photo that could not be read as an image
type DecodeError struct {
	View models.ViewID
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s photo %q: %v", e.View, e.Name, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

type Options struct {
	MaxBytes int64
}

// Bootstrap decodes the selected photos into views ordered front, side, rear.
// Photos that fail to decode are logged and dropped; ErrEmptySelection is
// returned when nothing usable remains.
func Bootstrap(ctx context.Context, selections map[models.ViewID]File, opts Options) ([]models.View, error) {
	if len(selections) == 0 {
		return nil, ErrEmptySelection
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}

	for id := range selections {
		if !id.Valid() {
			slog.Warn("Ignoring photo for unknown viewpoint", "view", id)
		}
	}

	views := make([]models.View, 0, len(selections))
	for _, id := range models.CanonicalViews {
		file, ok := selections[id]
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, err := Decode(file.Reader, opts.MaxBytes)
		if err != nil {
			derr := &DecodeError{View: id, Name: file.Name, Err: err}
			slog.Warn("Dropping view", "view", id, "file", file.Name, "err", derr)
			continue
		}

		slog.Debug("Loaded view", "view", id, "file", file.Name, "mime_type", img.MIMEType, "bytes", len(img.Data))
		views = append(views, models.NewView(id, img))
	}

	if len(views) == 0 {
		return nil, ErrEmptySelection
	}
	return views, nil
}

// Decode reads r fully and verifies it is a PNG, JPEG or WEBP image
func Decode(r io.Reader, maxBytes int64) (models.Image, error) {
	if r == nil {
		return models.Image{}, fmt.Errorf("no file contents")
	}

	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return models.Image{}, fmt.Errorf("failed to read file contents: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return models.Image{}, fmt.Errorf("file too large (max %d bytes)", maxBytes)
	}
	if len(data) == 0 {
		return models.Image{}, fmt.Errorf("file is empty")
	}

	_, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return models.Image{}, err
	}

	mimeType, ok := mimeTypes[format]
	if !ok {
		return models.Image{}, fmt.Errorf("unsupported format: %s", format)
	}

	return models.Image{Data: data, MIMEType: mimeType}, nil
}
