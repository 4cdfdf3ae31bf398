package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/askdoc/askdoc/internal/knowledge"
	"github.com/askdoc/askdoc/internal/rag"
	"github.com/askdoc/askdoc/internal/session"
)

// SessionStore is the session behaviour Agent depends on.
type SessionStore interface {
	Create() *session.Session
	Get(id uuid.UUID) (*session.Session, error)
	Acquire(id uuid.UUID) (func(), error)
	AppendExchange(id uuid.UUID, userContent, assistantContent string) error
	Clear(id uuid.UUID) error
	Delete(id uuid.UUID)
	SetSystemPrompt(id uuid.UUID, prompt string) error
	ActiveCount() int
}

// Retriever is the retrieval behaviour Agent depends on.
type Retriever interface {
	Retrieve(ctx context.Context, query string, opts ...knowledge.SearchOption) ([]knowledge.Result, error)
}

// Config holds the Agent's tunable defaults.
type Config struct {
	TopK          int // chunks retrieved per query; <= 0 uses rag.DefaultTopK
	HistoryWindow int // turns included in the prompt; <= 0 uses DefaultHistoryWindow
}

// QueryOptions are per-request overrides for ProcessQuery.
type QueryOptions struct {
	UseRAG bool // retrieve document context before generating
	TopK   int  // 0 uses the agent default
}

// QueryResult is the outcome of one completed query.
type QueryResult struct {
	SessionID uuid.UUID
	Query     string
	Response  string
	Sources   []string // distinct source files behind the answer, in rank order
	Degraded  bool     // retrieval failed and the answer was generated without context
}

// Agent runs the query pipeline against a session store, a retriever,
// and a generator.
//
// Agent is safe for concurrent use by multiple goroutines.
type Agent struct {
	sessions  SessionStore
	retriever Retriever
	generator Generator
	logger    *slog.Logger

	mu            sync.RWMutex
	topK          int
	historyWindow int
}

// New creates an Agent.
func New(sessions SessionStore, retriever Retriever, generator Generator, cfg Config, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = rag.DefaultTopK
	}
	window := cfg.HistoryWindow
	if window <= 0 {
		window = DefaultHistoryWindow
	}

	return &Agent{
		sessions:      sessions,
		retriever:     retriever,
		generator:     generator,
		logger:        logger,
		topK:          topK,
		historyWindow: window,
	}
}

// SetTopK changes the default retrieval depth. Effective on the next
// query.
func (a *Agent) SetTopK(k int) {
	if k <= 0 {
		return
	}
	a.mu.Lock()
	a.topK = k
	a.mu.Unlock()
}

// SetHistoryWindow changes the number of turns included in prompts.
// Effective on the next query.
func (a *Agent) SetHistoryWindow(n int) {
	if n <= 0 {
		return
	}
	a.mu.Lock()
	a.historyWindow = n
	a.mu.Unlock()
}

// ProcessQuery runs one query through the pipeline and returns the
// generated answer.
//
// The session stays pinned for the duration of the call, so it cannot
// expire between validation and the final history append. Retrieval
// failures degrade to context-free generation and mark the result.
// Generation failures return ErrGeneration and record nothing; the
// session history only ever holds completed exchanges.
func (a *Agent) ProcessQuery(ctx context.Context, sessionID uuid.UUID, query string, opts QueryOptions) (*QueryResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", ErrInvalidInput)
	}

	release, err := a.sessions.Acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	snapshot, err := a.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	a.mu.RLock()
	topK := a.topK
	window := a.historyWindow
	a.mu.RUnlock()
	if opts.TopK > 0 {
		topK = opts.TopK
	}

	var (
		contextBlock string
		sources      []string
		degraded     bool
	)
	if opts.UseRAG {
		results, retErr := a.retriever.Retrieve(ctx, query, knowledge.WithTopK(topK))
		if retErr != nil {
			// Answer from history alone rather than failing the query.
			a.logger.Warn("retrieval failed, generating without context",
				"session_id", sessionID, "error", retErr)
			degraded = true
		} else {
			contextBlock = rag.FormatContext(results)
			sources = rag.Sources(results)
		}
	}

	prompt := Compose(snapshot.SystemPrompt, snapshot.Turns, query, contextBlock, window)

	answer, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	if err := a.sessions.AppendExchange(sessionID, query, answer); err != nil {
		return nil, fmt.Errorf("recording exchange: %w", err)
	}

	a.logger.Debug("query processed",
		"session_id", sessionID,
		"use_rag", opts.UseRAG,
		"sources", len(sources),
		"degraded", degraded)

	return &QueryResult{
		SessionID: sessionID,
		Query:     query,
		Response:  answer,
		Sources:   sources,
		Degraded:  degraded,
	}, nil
}

// CreateSession opens a new session and returns its snapshot.
func (a *Agent) CreateSession() *session.Session {
	return a.sessions.Create()
}

// History returns the session's recorded turns.
func (a *Agent) History(sessionID uuid.UUID) ([]session.Turn, error) {
	snapshot, err := a.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return snapshot.Turns, nil
}

// ClearSession empties the session history, keeping the session alive.
func (a *Agent) ClearSession(sessionID uuid.UUID) error {
	return a.sessions.Clear(sessionID)
}

// DeleteSession ends the session. Idempotent.
func (a *Agent) DeleteSession(sessionID uuid.UUID) {
	a.sessions.Delete(sessionID)
}

// SetSessionPrompt overrides one session's system prompt.
func (a *Agent) SetSessionPrompt(sessionID uuid.UUID, prompt string) error {
	return a.sessions.SetSystemPrompt(sessionID, prompt)
}

// ActiveSessions returns the number of live sessions.
func (a *Agent) ActiveSessions() int {
	return a.sessions.ActiveCount()
}
