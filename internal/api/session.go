package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/askdoc/askdoc/internal/session"
)

// sessionHandler serves the session lifecycle routes.
type sessionHandler struct {
	agent  QueryAgent
	logger *slog.Logger
}

// create handles POST /api/v1/sessions.
func (h *sessionHandler) create(w http.ResponseWriter, _ *http.Request) {
	sess := h.agent.CreateSession()
	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id": sess.ID.String(),
		"created_at": sess.CreatedAt,
	}, h.logger)
}

// history handles GET /api/v1/sessions/{id}/history.
func (h *sessionHandler) history(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSessionID(w, r, h.logger)
	if !ok {
		return
	}

	turns, err := h.agent.History(id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session_not_found", "session not found or expired", h.logger)
			return
		}
		h.logger.Error("fetching history", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error", h.logger)
		return
	}

	if turns == nil {
		turns = []session.Turn{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": id.String(),
		"history":    turns,
	}, h.logger)
}

// clear handles POST /api/v1/sessions/{id}/clear.
func (h *sessionHandler) clear(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSessionID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.agent.ClearSession(id); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session_not_found", "session not found or expired", h.logger)
			return
		}
		h.logger.Error("clearing session", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true}, h.logger)
}

// delete handles DELETE /api/v1/sessions/{id}. Deleting an absent or
// expired session succeeds: the end state is the same.
func (h *sessionHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSessionID(w, r, h.logger)
	if !ok {
		return
	}

	h.agent.DeleteSession(id)
	writeJSON(w, http.StatusOK, map[string]any{"success": true}, h.logger)
}

// parseSessionID reads the {id} path value. On failure it writes a 400
// and returns ok=false.
func parseSessionID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_session_id", "session id must be a UUID", logger)
		return uuid.Nil, false
	}
	return id, true
}
