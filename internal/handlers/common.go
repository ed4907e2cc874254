package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lehigh-university-libraries/carcustomizer/internal/bootstrap"
	"github.com/lehigh-university-libraries/carcustomizer/internal/images"
	"github.com/lehigh-university-libraries/carcustomizer/internal/prompts"
	"github.com/lehigh-university-libraries/carcustomizer/internal/providers"
	"github.com/lehigh-university-libraries/carcustomizer/internal/storage"
)

// maxJSONBytes bounds JSON request bodies that carry no image data
const maxJSONBytes = 1 << 20

type Handler struct {
	sessionStore   *storage.SessionStore
	editor         providers.Editor
	catalog        *prompts.Catalog
	fetcher        *images.Fetcher
	maxUploadBytes int64
	now            func() time.Time
}

type Options struct {
	MaxUploadBytes int64
	Catalog        *prompts.Catalog
}

func New(editor providers.Editor, opts Options) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = bootstrap.DefaultMaxBytes
	}
	if opts.Catalog == nil {
		opts.Catalog = prompts.Default()
	}
	fetcher := images.NewFetcher()
	fetcher.MaxBytes = opts.MaxUploadBytes

	return &Handler{
		sessionStore:   storage.New(),
		editor:         editor,
		catalog:        opts.Catalog,
		fetcher:        fetcher,
		maxUploadBytes: opts.MaxUploadBytes,
		now:            time.Now,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message)
	} else {
		slog.Debug(message, "code", code)
	}
	h.writeJSONStatus(w, code, errorResponse{Error: message})
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, r *http.Request) (*storage.Session, bool) {
	session, exists := h.sessionStore.Get(chi.URLParam(r, "id"))
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}

// baseURL is the scheme and host the request was addressed to
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + r.Host
}
