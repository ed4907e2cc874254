package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/carcustomizer/internal/bootstrap"
	"github.com/lehigh-university-libraries/carcustomizer/internal/images"
	"github.com/lehigh-university-libraries/carcustomizer/internal/models"
)

// HandleCreateSession starts an editor session from uploaded photos
// (multipart fields front, side, rear) or from a JSON body of image URLs
func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	var (
		files map[models.ViewID]bootstrap.File
		ok    bool
	)

	// Check if this is a JSON request with image URLs
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		files, ok = h.urlSelections(w, r)
	} else {
		files, ok = h.fileSelections(w, r)
	}
	if !ok {
		return
	}

	views, err := bootstrap.Bootstrap(r.Context(), files, bootstrap.Options{MaxBytes: h.maxUploadBytes})
	if err != nil {
		if errors.Is(err, bootstrap.ErrEmptySelection) {
			h.writeError(w, "No usable vehicle photos were provided", http.StatusBadRequest)
			return
		}
		h.writeError(w, "Failed to load photos: "+err.Error(), http.StatusInternalServerError)
		return
	}

	session, err := h.sessionStore.Create(views, h.editor)
	if err != nil {
		h.writeError(w, "Failed to create session: "+err.Error(), http.StatusInternalServerError)
		return
	}

	slog.Info("Session created", "session_id", session.ID, "views", len(views))
	h.writeJSONStatus(w, http.StatusCreated, session.Summary(baseURL(r)))
}

func (h *Handler) urlSelections(w http.ResponseWriter, r *http.Request) (map[models.ViewID]bootstrap.File, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	var request map[models.ViewID]string
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}

	sources := make(map[models.ViewID]string, len(request))
	for id, url := range request {
		if !id.Valid() {
			h.writeError(w, "Invalid view "+string(id)+". Must be 'front', 'side', or 'rear'", http.StatusBadRequest)
			return nil, false
		}
		if url == "" {
			continue
		}
		if !images.IsURL(url) {
			h.writeError(w, "Invalid image URL for "+string(id)+". Must be an http or https URL", http.StatusBadRequest)
			return nil, false
		}
		sources[id] = url
	}
	if len(sources) == 0 {
		h.writeError(w, "At least one image URL is required", http.StatusBadRequest)
		return nil, false
	}

	return h.fetcher.FetchAll(r.Context(), sources), true
}

func (h *Handler) fileSelections(w http.ResponseWriter, r *http.Request) (map[models.ViewID]bootstrap.File, bool) {
	// Three photos plus multipart overhead
	r.Body = http.MaxBytesReader(w, r.Body, 3*h.maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.writeError(w, "Failed to read upload: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}

	files := make(map[models.ViewID]bootstrap.File)
	for _, id := range models.CanonicalViews {
		file, header, err := r.FormFile(string(id))
		if err != nil {
			continue
		}
		data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
		file.Close()
		if err != nil {
			h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
			return nil, false
		}
		files[id] = bootstrap.File{Name: header.Filename, Reader: bytes.NewReader(data)}
	}
	return files, true
}
