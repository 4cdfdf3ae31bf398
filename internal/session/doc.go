// Package session provides the in-memory registry of chat sessions.
//
// A session is a conversation context keyed by an opaque UUID, holding a
// bounded turn history, a per-session system prompt, and activity
// timestamps. The [Store] is the sole lifecycle authority: sessions are
// created on request, mutated only through Store methods, and destroyed
// by explicit delete or by timeout expiry.
//
// Key operations:
//
//   - Lifecycle: [Store.Create], [Store.Get], [Store.Delete], [Store.Clear]
//   - History: [Store.AppendTurn], [Store.AppendExchange]
//   - Queries: [Store.ActiveCount]
//
// # Expiry
//
// A session whose idle time exceeds the configured timeout behaves as
// absent: Get, AppendTurn, and Clear return [ErrNotFound]. Expiry is
// checked lazily at access time; [Store.StartSweeper] additionally runs a
// background sweep so idle sessions release memory without waiting for
// the next access. Both paths are observably identical.
//
// # Concurrency
//
// Store is safe for concurrent use. A registry RWMutex guards the session
// map; a per-session mutex serializes history mutation, so concurrent
// appends to the same session never lose updates. Cross-session
// operations do not serialize with each other. [Store.Acquire] pins a
// session for the duration of an in-flight query so that neither lazy
// expiry nor the sweeper can evict it between validation and the final
// history write.
package session
