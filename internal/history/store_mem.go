package history

import (
	"sync"

	"github.com/parleyhq/parley/internal/provider"
)

// sessionLog holds the message sequence for a single session.
type sessionLog struct {
	messages []provider.Message
}

// InMemoryStore is a thread-safe, in-memory implementation of Store.
// State lives for the process lifetime only.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionLog
}

// NewInMemoryStore creates a new empty history store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string]*sessionLog),
	}
}

// Compile-time interface check.
var _ Store = (*InMemoryStore)(nil)

func (s *InMemoryStore) getOrCreate(key string) *sessionLog {
	sl, ok := s.sessions[key]
	if !ok {
		sl = &sessionLog{}
		s.sessions[key] = sl
	}
	return sl
}

// GetOrCreate returns a copy of the session's messages, creating an empty
// session if absent. The returned slice is the caller's to mutate.
func (s *InMemoryStore) GetOrCreate(key string) []provider.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl := s.getOrCreate(key)
	result := make([]provider.Message, len(sl.messages))
	copy(result, sl.messages)
	return result
}

// Append adds a message to the session's history.
func (s *InMemoryStore) Append(key string, msg provider.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := s.getOrCreate(key)
	sl.messages = append(sl.messages, msg)
	return nil
}

// AppendExchange adds a completed user-assistant pair under a single lock
// acquisition. No reader can observe the user message without the reply.
func (s *InMemoryStore) AppendExchange(key string, ex Exchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := s.getOrCreate(key)
	sl.messages = append(sl.messages, ex.User, ex.Assistant)
	return nil
}

// Clear empties the session's message sequence. The key remains known to
// the store, so an existing directory entry keeps resolving.
func (s *InMemoryStore) Clear(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := s.getOrCreate(key)
	sl.messages = nil
	return nil
}

// Delete removes the session entirely. It is a no-op for unknown keys.
func (s *InMemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
	return nil
}

// Len returns the number of messages stored for a session.
func (s *InMemoryStore) Len(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sl, ok := s.sessions[key]
	if !ok {
		return 0
	}
	return len(sl.messages)
}

// Exists reports whether the session key is known to the store.
func (s *InMemoryStore) Exists(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[key]
	return ok
}
