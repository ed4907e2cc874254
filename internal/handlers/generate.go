package handlers

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/carcustomizer/internal/models"
	"github.com/lehigh-university-libraries/carcustomizer/internal/relay"
)

// HandleGenerate is the relay endpoint: it forwards one edit to the server's
// configured editor so browsers never hold the provider credential.
// The instruction is passed through untouched.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 2*h.maxUploadBytes)

	var request relay.Request
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Missing data", http.StatusBadRequest)
		return
	}
	if request.Instruction == "" || request.ImageBase64 == "" {
		h.writeError(w, "Missing data", http.StatusBadRequest)
		return
	}

	data, err := base64.StdEncoding.DecodeString(request.ImageBase64)
	if err != nil || len(data) == 0 {
		h.writeError(w, "Missing data", http.StatusBadRequest)
		return
	}
	mimeType := request.MIMEType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	img, err := h.editor.Edit(r.Context(), models.Image{Data: data, MIMEType: mimeType}, request.Instruction)
	if err != nil {
		slog.Error("Relay generation failed", "err", err)
		h.writeError(w, "Generation Failed", http.StatusInternalServerError)
		return
	}
	if img.Empty() {
		slog.Error("Relay generation returned no image")
		h.writeError(w, "Generation Failed", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, relay.Response{
		ImageBase64: base64.StdEncoding.EncodeToString(img.Data),
		MIMEType:    img.MIMEType,
	})
}
