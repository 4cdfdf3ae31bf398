package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/askdoc/askdoc/internal/agent"
	"github.com/askdoc/askdoc/internal/session"
)

// maxChatBodySize caps the chat request body at 1 MiB.
const maxChatBodySize = 1 << 20

// chatRequest is the POST /api/v1/chat payload. use_rag defaults to
// true when omitted.
type chatRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
	UseRAG    *bool  `json:"use_rag,omitempty"`
	TopK      int    `json:"top_k,omitempty"`
}

// chatResponse mirrors one completed query.
type chatResponse struct {
	SessionID string   `json:"session_id"`
	Query     string   `json:"query"`
	Response  string   `json:"response"`
	Sources   []string `json:"sources"`
	Degraded  bool     `json:"degraded,omitempty"`
	Success   bool     `json:"success"`
}

// chatHandler serves POST /api/v1/chat.
type chatHandler struct {
	agent  QueryAgent
	logger *slog.Logger
}

func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodySize)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON", h.logger)
		return
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_session_id", "session_id must be a UUID", h.logger)
		return
	}

	useRAG := true
	if req.UseRAG != nil {
		useRAG = *req.UseRAG
	}

	result, err := h.agent.ProcessQuery(r.Context(), sessionID, req.Query, agent.QueryOptions{
		UseRAG: useRAG,
		TopK:   req.TopK,
	})
	if err != nil {
		switch {
		case errors.Is(err, agent.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid_query", "query must not be empty", h.logger)
		case errors.Is(err, session.ErrNotFound):
			writeError(w, http.StatusNotFound, "session_not_found", "session not found or expired", h.logger)
		case errors.Is(err, agent.ErrGeneration):
			h.logger.Error("generation failed", "session_id", sessionID, "error", err)
			writeError(w, http.StatusBadGateway, "generation_failed", "model failed to produce a response", h.logger)
		default:
			h.logger.Error("query failed", "session_id", sessionID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal server error", h.logger)
		}
		return
	}

	sources := result.Sources
	if sources == nil {
		sources = []string{}
	}
	writeJSON(w, http.StatusOK, chatResponse{
		SessionID: result.SessionID.String(),
		Query:     result.Query,
		Response:  result.Response,
		Sources:   sources,
		Degraded:  result.Degraded,
		Success:   true,
	}, h.logger)
}
