// Package history provides per-session conversation logs with an in-memory
// implementation. Each session key owns one ordered, append-only message
// sequence; sessions are created lazily on first reference.
package history

import (
	"time"

	"github.com/parleyhq/parley/internal/provider"
)

// Exchange is a completed user-assistant turn. Appending an Exchange is the
// only way a turn enters history, so readers never observe a user message
// without its assistant reply.
type Exchange struct {
	User      provider.Message
	Assistant provider.Message
	Timestamp time.Time
}

// Store manages per-session conversation history.
// Implementations must be safe for concurrent use, and operations on
// different session keys must not block one another beyond map access.
type Store interface {
	// GetOrCreate returns a copy of the session's messages, creating an
	// empty session if the key is unknown. Creation is idempotent: exactly
	// one session exists per key even under concurrent first access.
	GetOrCreate(key string) []provider.Message

	// Append adds a single message to the end of the session's sequence,
	// creating the session first if needed.
	Append(key string, msg provider.Message) error

	// AppendExchange adds a completed (user, assistant) pair atomically.
	AppendExchange(key string, ex Exchange) error

	// Clear empties the session's message sequence while preserving the
	// key's existence.
	Clear(key string) error

	// Delete removes the session entirely.
	Delete(key string) error

	// Len returns the number of messages stored for a session.
	Len(key string) int

	// Exists reports whether the session key is known to the store.
	Exists(key string) bool
}
