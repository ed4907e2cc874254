package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/carcustomizer/internal/models"
	"github.com/lehigh-university-libraries/carcustomizer/internal/orchestrator"
	"github.com/lehigh-university-libraries/carcustomizer/internal/prompts"
	"github.com/lehigh-university-libraries/carcustomizer/internal/storage"
)

// ModificationRequest is a selection to apply to every view of a session
type ModificationRequest struct {
	prompts.Selection
	// Async returns immediately and applies the modification in the background
	Async bool `json:"async,omitempty"`
}

type viewOutcome struct {
	View     models.ViewID `json:"view"`
	Error    string        `json:"error,omitempty"`
	Duration string        `json:"duration"`
}

type modificationResponse struct {
	Modification models.Modification  `json:"modification"`
	Outcomes     []viewOutcome        `json:"outcomes,omitempty"`
	Session      models.EditorSession `json:"session"`
}

func (h *Handler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.sessionStore.GetAll()
	base := baseURL(r)
	sessionList := make([]models.EditorSession, 0, len(sessions))
	for _, session := range sessions {
		sessionList = append(sessionList, session.Summary(base))
	}
	h.writeJSON(w, sessionList)
}

func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, session.Summary(baseURL(r)))
}

func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	if session.Orchestrator.Busy() {
		h.writeError(w, "Session is busy applying a modification", http.StatusConflict)
		return
	}
	h.sessionStore.Delete(session.ID)
	slog.Info("Session deleted", "session_id", session.ID)
	w.WriteHeader(http.StatusNoContent)
}

// HandleApplyModification applies one modification to every view of a session
func (h *Handler) HandleApplyModification(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	var request ModificationRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	mod, err := h.catalog.Resolve(request.Selection)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if request.Async {
		h.applyAsync(w, r, session, mod)
		return
	}

	outcomes, err := session.Orchestrator.Apply(r.Context(), mod)
	if err != nil {
		h.writeApplyError(w, err)
		return
	}

	response := modificationResponse{
		Modification: mod,
		Session:      session.Summary(baseURL(r)),
	}
	for _, o := range outcomes {
		vo := viewOutcome{View: o.View, Duration: o.Duration.String()}
		if o.Err != nil {
			vo.Error = o.Err.Error()
		}
		response.Outcomes = append(response.Outcomes, vo)
	}
	h.writeJSON(w, response)
}

func (h *Handler) applyAsync(w http.ResponseWriter, r *http.Request, session *storage.Session, mod models.Modification) {
	done, err := session.Orchestrator.Start(context.Background(), mod)
	if err != nil {
		h.writeApplyError(w, err)
		return
	}
	go func() {
		batch := <-done
		if batch.Err != nil {
			slog.Error("Background modification failed", "session_id", session.ID, "err", batch.Err)
		}
	}()

	h.writeJSONStatus(w, http.StatusAccepted, modificationResponse{
		Modification: mod,
		Session:      session.Summary(baseURL(r)),
	})
}

func (h *Handler) writeApplyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orchestrator.ErrBusy):
		h.writeError(w, "Session is busy applying a modification", http.StatusConflict)
	case errors.Is(err, orchestrator.ErrEmptyInstruction):
		h.writeError(w, err.Error(), http.StatusBadRequest)
	default:
		h.writeError(w, "Failed to apply modification: "+err.Error(), http.StatusInternalServerError)
	}
}

// HandleReset restores every view of a session to its original photo
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	if err := session.Orchestrator.Reset(); err != nil {
		h.writeApplyError(w, err)
		return
	}
	slog.Info("Session reset", "session_id", session.ID)
	h.writeJSON(w, session.Summary(baseURL(r)))
}

func (h *Handler) HandleOptions(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.catalog)
}
