package session

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a conversation turn.
type Role string

// Valid turn roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single message in a session's history.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is a point-in-time snapshot of a stored session.
// Mutating a snapshot has no effect on the store; all writes go
// through Store methods.
type Session struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	LastActivityAt time.Time
	SystemPrompt   string
	Turns          []Turn
}
