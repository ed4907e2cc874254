package images

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/carcustomizer/internal/bootstrap"
	"github.com/lehigh-university-libraries/carcustomizer/internal/models"
)

// Fetcher retrieves car photos from local paths or http(s) URLs
type Fetcher struct {
	HTTPClient *http.Client
	MaxBytes   int64
}

// NewFetcher creates a new image fetcher
func NewFetcher() *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		MaxBytes: bootstrap.DefaultMaxBytes,
	}
}

// IsURL reports whether source should be downloaded rather than opened
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Fetch loads one photo into memory, named after the last path element
func (f *Fetcher) Fetch(ctx context.Context, source string) (bootstrap.File, error) {
	if IsURL(source) {
		return f.download(ctx, source)
	}

	file, err := os.Open(source)
	if err != nil {
		return bootstrap.File{}, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	data, err := f.readLimited(file)
	if err != nil {
		return bootstrap.File{}, err
	}
	return bootstrap.File{Name: filepath.Base(source), Reader: bytes.NewReader(data)}, nil
}

// readLimited reads at most MaxBytes, failing when the source holds more
func (f *Fetcher) readLimited(r io.Reader) ([]byte, error) {
	maxBytes := f.MaxBytes
	if maxBytes <= 0 {
		maxBytes = bootstrap.DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", maxBytes)
	}
	return data, nil
}

// FetchAll loads every selected source. Sources that cannot be fetched are
// logged and skipped; bootstrap decides whether enough remain.
func (f *Fetcher) FetchAll(ctx context.Context, sources map[models.ViewID]string) map[models.ViewID]bootstrap.File {
	files := make(map[models.ViewID]bootstrap.File, len(sources))
	for id, source := range sources {
		if source == "" {
			continue
		}
		file, err := f.Fetch(ctx, source)
		if err != nil {
			slog.Warn("Failed to fetch view image", "view", id, "source", source, "err", err)
			continue
		}
		slog.Debug("Fetched view image", "view", id, "source", source)
		files[id] = file
	}
	return files
}

func (f *Fetcher) download(ctx context.Context, url string) (bootstrap.File, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return bootstrap.File{}, fmt.Errorf("failed to create new request: %w", err)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return bootstrap.File{}, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return bootstrap.File{}, fmt.Errorf("image URL returned status %d", resp.StatusCode)
	}

	imageData, err := f.readLimited(resp.Body)
	if err != nil {
		return bootstrap.File{}, err
	}

	name := path.Base(req.URL.Path)
	if name == "/" || name == "." {
		name = ""
	}
	return bootstrap.File{Name: name, Reader: bytes.NewReader(imageData)}, nil
}
