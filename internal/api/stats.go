package api

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/askdoc/askdoc/internal/rag"
)

// statsHandler serves GET /api/v1/stats.
type statsHandler struct {
	agent  QueryAgent
	corpus CorpusStats
	logger *slog.Logger
}

func (h *statsHandler) stats(w http.ResponseWriter, r *http.Request) {
	chunks, err := h.corpus.Count(r.Context())
	if err != nil {
		h.logger.Error("counting chunks", "error", err)
		writeError(w, http.StatusInternalServerError, "stats_failed", "could not read corpus stats", h.logger)
		return
	}
	sources, err := h.corpus.CountSources(r.Context())
	if err != nil {
		h.logger.Error("counting sources", "error", err)
		writeError(w, http.StatusInternalServerError, "stats_failed", "could not read corpus stats", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"active_sessions": h.agent.ActiveSessions(),
		"indexed_chunks":  chunks,
		"indexed_sources": sources,
	}, h.logger)
}

// reindexHandler serves POST /api/v1/reindex. The rebuild is
// synchronous: the response reports what was indexed and which files
// failed.
type reindexHandler struct {
	indexer   Reindexer
	corpusDir string
	logger    *slog.Logger
}

type reindexFailure struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

func (h *reindexHandler) reindex(w http.ResponseWriter, r *http.Request) {
	result, err := h.indexer.Reindex(r.Context(), h.corpusDir)
	if err != nil {
		if errors.Is(err, rag.ErrNoDocuments) {
			writeError(w, http.StatusNotFound, "no_documents", "no indexable documents in the corpus directory", h.logger)
			return
		}
		h.logger.Error("reindex failed", "dir", h.corpusDir, "error", err)
		writeError(w, http.StatusInternalServerError, "reindex_failed", "corpus rebuild failed", h.logger)
		return
	}

	failures := make([]reindexFailure, 0, len(result.Failures))
	for _, f := range result.Failures {
		failures = append(failures, reindexFailure{
			File:  filepath.Base(f.Path),
			Error: f.Err.Error(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"files_indexed":  result.FilesIndexed,
		"files_failed":   result.FilesFailed,
		"chunks_indexed": result.ChunksIndexed,
		"failures":       failures,
		"duration_ms":    result.Duration.Milliseconds(),
	}, h.logger)
}
