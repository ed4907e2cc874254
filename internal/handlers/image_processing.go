package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lehigh-university-libraries/carcustomizer/internal/models"
)

const (
	variantCurrent  = "current"
	variantOriginal = "original"
)

// HandleViewImage serves the current or original photo of one view.
// ?download=true marks the response as an attachment.
func (h *Handler) HandleViewImage(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	id := models.ViewID(chi.URLParam(r, "view"))
	if !id.Valid() {
		h.writeError(w, "Invalid view. Must be 'front', 'side', or 'rear'", http.StatusBadRequest)
		return
	}
	view, exists := session.Registry().Get(id)
	if !exists {
		h.writeError(w, "View not found in session", http.StatusNotFound)
		return
	}

	var img models.Image
	switch variant := r.URL.Query().Get("variant"); variant {
	case "", variantCurrent:
		img = view.Current
	case variantOriginal:
		img = view.Original
	default:
		h.writeError(w, "Invalid variant. Must be 'current' or 'original'", http.StatusBadRequest)
		return
	}

	disposition := "inline"
	if download, _ := strconv.ParseBool(r.URL.Query().Get("download")); download {
		disposition = "attachment"
	}

	w.Header().Set("Content-Type", img.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, downloadFilename(view.Label, img, h.now())))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(img.Data)
}

// downloadFilename names an exported view, e.g. car-customizer-front-view-1700000000000.png
func downloadFilename(label string, img models.Image, at time.Time) string {
	slug := strings.ToLower(strings.Join(strings.Fields(label), "-"))
	return fmt.Sprintf("car-customizer-%s-%d%s", slug, at.UnixMilli(), img.Extension())
}
