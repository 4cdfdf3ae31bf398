package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Default store configuration values.
const (
	// DefaultTimeout is the idle duration after which a session expires.
	DefaultTimeout = time.Hour

	// DefaultMaxHistory is the maximum number of turns kept per session.
	// Oldest turns are evicted first when the bound is exceeded.
	DefaultMaxHistory = 20
)

// Config contains the Store's tunable parameters.
// Zero values fall back to the package defaults.
type Config struct {
	Timeout      time.Duration // idle expiry; <= 0 uses DefaultTimeout
	MaxHistory   int           // history cap in turns; <= 0 uses DefaultMaxHistory
	SystemPrompt string        // default system prompt for new sessions
}

// state is the mutable record behind a session ID. Its mutex serializes
// all history mutation for that session.
type state struct {
	mu           sync.Mutex
	createdAt    time.Time
	lastActivity time.Time
	systemPrompt string
	turns        []Turn
	pins         int
}

// Store is the process-wide session registry and lifecycle authority.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*state

	timeout       time.Duration
	maxHistory    int
	defaultPrompt string
	logger        *slog.Logger

	// now is a test seam; production uses time.Now.
	now func() time.Time
}

// New creates a Store with the given configuration.
func New(cfg Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxHistory := cfg.MaxHistory
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}

	return &Store{
		sessions:      make(map[uuid.UUID]*state),
		timeout:       timeout,
		maxHistory:    maxHistory,
		defaultPrompt: cfg.SystemPrompt,
		logger:        logger,
		now:           time.Now,
	}
}

// Create allocates a fresh session with empty history and the default
// system prompt, and returns its snapshot. Create always succeeds:
// collision probability of UUIDv4 identifiers is negligible.
func (s *Store) Create() *Session {
	id := uuid.New()
	now := s.now()

	st := &state{
		createdAt:    now,
		lastActivity: now,
		systemPrompt: s.defaultPrompt,
	}

	s.mu.Lock()
	s.sessions[id] = st
	s.mu.Unlock()

	s.logger.Debug("created session", "id", id)
	return &Session{
		ID:             id,
		CreatedAt:      now,
		LastActivityAt: now,
		SystemPrompt:   s.defaultPrompt,
	}
}

// Get returns a snapshot of the session, refreshing its activity
// timestamp. Returns ErrNotFound for absent or expired sessions.
func (s *Store) Get(id uuid.UUID) (*Session, error) {
	st, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()

	st.lastActivity = s.now()
	return s.snapshotLocked(id, st), nil
}

// Acquire validates the session, refreshes its activity timestamp, and
// pins it so that neither lazy expiry nor the background sweeper can
// evict it until the returned release func is called. The caller holds
// the pin across an in-flight query so the session cannot vanish between
// validation and the final history append. Release is idempotent-safe
// only when called once; callers defer it exactly once.
func (s *Store) Acquire(id uuid.UUID) (func(), error) {
	st, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	st.lastActivity = s.now()
	st.pins++
	st.mu.Unlock()

	return func() {
		st.mu.Lock()
		st.pins--
		st.mu.Unlock()
	}, nil
}

// AppendTurn appends a single turn to the session history, evicting the
// oldest turns when the history cap is exceeded, and refreshes the
// activity timestamp. Returns ErrNotFound for absent or expired sessions.
func (s *Store) AppendTurn(id uuid.UUID, role Role, content string) error {
	st, err := s.lookup(id)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	now := s.now()
	st.turns = append(st.turns, Turn{Role: role, Content: content, Timestamp: now})
	s.trimLocked(st)
	st.lastActivity = now

	s.logger.Debug("appended turn", "session_id", id, "role", role, "history_len", len(st.turns))
	return nil
}

// AppendExchange appends a completed user/assistant exchange as a single
// atomic mutation. Either both turns are recorded or neither is; a
// concurrent reader never observes the user turn without its response.
func (s *Store) AppendExchange(id uuid.UUID, userContent, assistantContent string) error {
	st, err := s.lookup(id)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	now := s.now()
	st.turns = append(st.turns,
		Turn{Role: RoleUser, Content: userContent, Timestamp: now},
		Turn{Role: RoleAssistant, Content: assistantContent, Timestamp: now},
	)
	s.trimLocked(st)
	st.lastActivity = now

	s.logger.Debug("appended exchange", "session_id", id, "history_len", len(st.turns))
	return nil
}

// Clear empties the session history while preserving its identity and
// system prompt, and refreshes the activity timestamp. Clearing an
// already-empty session is not an error.
func (s *Store) Clear(id uuid.UUID) error {
	st, err := s.lookup(id)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	st.turns = nil
	st.lastActivity = s.now()

	s.logger.Debug("cleared session", "id", id)
	return nil
}

// SetSystemPrompt overrides the session's system prompt.
func (s *Store) SetSystemPrompt(id uuid.UUID, prompt string) error {
	st, err := s.lookup(id)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	st.systemPrompt = prompt
	st.lastActivity = s.now()
	return nil
}

// Delete removes the session. Idempotent: deleting an absent or expired
// session is not an error.
func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	_, existed := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if existed {
		s.logger.Debug("deleted session", "id", id)
	}
}

// ActiveCount returns the number of non-expired sessions at call time.
func (s *Store) ActiveCount() int {
	s.mu.RLock()
	states := make([]*state, 0, len(s.sessions))
	for _, st := range s.sessions {
		states = append(states, st)
	}
	s.mu.RUnlock()

	count := 0
	for _, st := range states {
		st.mu.Lock()
		if !s.expiredLocked(st) {
			count++
		}
		st.mu.Unlock()
	}
	return count
}

// StartSweeper launches a background goroutine that evicts expired
// sessions every interval. The goroutine exits when ctx is canceled.
// Sweeping is an optimization only; lazy expiry at access time already
// makes expired sessions behave as absent.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.sweep(); n > 0 {
					s.logger.Debug("swept expired sessions", "count", n)
				}
			}
		}
	}()
}

// sweep removes all expired sessions and returns how many were evicted.
func (s *Store) sweep() int {
	s.mu.RLock()
	candidates := make(map[uuid.UUID]*state, len(s.sessions))
	for id, st := range s.sessions {
		candidates[id] = st
	}
	s.mu.RUnlock()

	var expired []uuid.UUID
	for id, st := range candidates {
		st.mu.Lock()
		if s.expiredLocked(st) {
			expired = append(expired, id)
		}
		st.mu.Unlock()
	}

	if len(expired) == 0 {
		return 0
	}

	evicted := 0
	s.mu.Lock()
	for _, id := range expired {
		// Re-check under the write lock: the session may have been
		// touched or pinned since the candidate scan.
		st, ok := s.sessions[id]
		if !ok {
			continue
		}
		st.mu.Lock()
		gone := s.expiredLocked(st)
		st.mu.Unlock()
		if gone {
			delete(s.sessions, id)
			evicted++
		}
	}
	s.mu.Unlock()

	return evicted
}

// lookup resolves id to its state with the state mutex held, applying
// lazy expiry. On success the caller owns st.mu and must unlock it.
func (s *Store) lookup(id uuid.UUID) (*state, error) {
	s.mu.RLock()
	st, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	st.mu.Lock()
	if s.expiredLocked(st) {
		st.mu.Unlock()
		s.evict(id)
		return nil, ErrNotFound
	}
	return st, nil
}

// expiredLocked reports whether st has been idle past the timeout.
// Pinned sessions never expire: an in-flight query holds a pin between
// validation and its history append. Caller holds st.mu.
func (s *Store) expiredLocked(st *state) bool {
	if st.pins > 0 {
		return false
	}
	return s.now().Sub(st.lastActivity) > s.timeout
}

// evict removes an expired session from the registry.
func (s *Store) evict(id uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	s.logger.Debug("expired session evicted", "id", id)
}

// trimLocked enforces the history cap with FIFO eviction by turn count.
// Caller holds st.mu.
func (s *Store) trimLocked(st *state) {
	if over := len(st.turns) - s.maxHistory; over > 0 {
		st.turns = append(st.turns[:0:0], st.turns[over:]...)
	}
}

// snapshotLocked copies st into an immutable Session. Caller holds st.mu.
func (s *Store) snapshotLocked(id uuid.UUID, st *state) *Session {
	turns := make([]Turn, len(st.turns))
	copy(turns, st.turns)

	return &Session{
		ID:             id,
		CreatedAt:      st.createdAt,
		LastActivityAt: st.lastActivity,
		SystemPrompt:   st.systemPrompt,
		Turns:          turns,
	}
}
