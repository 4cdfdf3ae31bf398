package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/askdoc/askdoc/internal/agent"
	"github.com/askdoc/askdoc/internal/rag"
	"github.com/askdoc/askdoc/internal/session"
)

// QueryAgent is the agent behaviour the handlers need.
type QueryAgent interface {
	ProcessQuery(ctx context.Context, sessionID uuid.UUID, query string, opts agent.QueryOptions) (*agent.QueryResult, error)
	CreateSession() *session.Session
	History(sessionID uuid.UUID) ([]session.Turn, error)
	ClearSession(sessionID uuid.UUID) error
	DeleteSession(sessionID uuid.UUID)
	ActiveSessions() int
}

// CorpusStats reports corpus size for the stats route.
type CorpusStats interface {
	Count(ctx context.Context) (int, error)
	CountSources(ctx context.Context) (int, error)
}

// Reindexer rebuilds the corpus for the reindex route.
type Reindexer interface {
	Reindex(ctx context.Context, dir string) (*rag.IndexResult, error)
}

// ServerConfig contains the server's collaborators and tuning.
type ServerConfig struct {
	Logger     *slog.Logger
	Agent      QueryAgent    // required
	Corpus     CorpusStats   // required
	Indexer    Reindexer     // required
	CorpusDir  string        // directory the reindex route rebuilds from
	Pool       *pgxpool.Pool // optional: nil skips the DB ping in /ready
	TrustProxy bool          // trust X-Real-IP/X-Forwarded-For
	RateBurst  int           // per-IP burst size (0 = default 60)
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates the server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Agent == nil {
		return nil, errors.New("agent is required")
	}
	if cfg.Corpus == nil {
		return nil, errors.New("corpus stats source is required")
	}
	if cfg.Indexer == nil {
		return nil, errors.New("indexer is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sh := &sessionHandler{agent: cfg.Agent, logger: logger}
	ch := &chatHandler{agent: cfg.Agent, logger: logger}
	st := &statsHandler{agent: cfg.Agent, corpus: cfg.Corpus, logger: logger}
	ri := &reindexHandler{indexer: cfg.Indexer, corpusDir: cfg.CorpusDir, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/sessions", sh.create)
	mux.HandleFunc("GET /api/v1/sessions/{id}/history", sh.history)
	mux.HandleFunc("POST /api/v1/sessions/{id}/clear", sh.clear)
	mux.HandleFunc("DELETE /api/v1/sessions/{id}", sh.delete)
	mux.HandleFunc("POST /api/v1/chat", ch.send)
	mux.HandleFunc("GET /api/v1/stats", st.stats)
	mux.HandleFunc("POST /api/v1/reindex", ri.reindex)

	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 60
	}
	rl := newRateLimiter(1.0, burst)

	// Middleware stack, outermost first:
	//   Recovery → RequestID → Logging → RateLimit → Routes
	// RequestID precedes Logging so request_id is available in log
	// attributes.
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, cfg.TrustProxy, logger)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Health probes sit outside the middleware stack so orchestrator
	// checks are never rate limited.
	topMux := http.NewServeMux()
	topMux.Handle("GET /health", health(logger))
	topMux.Handle("GET /ready", readiness(cfg.Pool, logger))
	topMux.Handle("/", handler)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
