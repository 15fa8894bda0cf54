package sessions

import (
	"context"
	"sync"
	"time"
)

// Store persists session state keyed by session ID. Implementations must
// make End idempotent: ending a session that does not exist is not an error.
type Store interface {
	// Start binds the session ID to the given state, overwriting any prior
	// binding.
	Start(ctx context.Context, sessionID string, sess Session) error
	// Get reads the state for the session ID. The second return value is
	// false when no live session exists.
	Get(ctx context.Context, sessionID string) (Session, bool, error)
	// End removes the binding unconditionally.
	End(ctx context.Context, sessionID string) error
}

type memoryEntry struct {
	sess      Session
	expiresAt time.Time
}

// memoryStore keeps sessions in process memory. It is the default store when
// no Redis address is configured.
type memoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

// NewMemoryStore creates an in-memory session store with the given TTL
func NewMemoryStore(ttl time.Duration) *memoryStore {
	return &memoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}
}

// Start binds the session ID to the given state
func (s *memoryStore) Start(ctx context.Context, sessionID string, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[sessionID] = memoryEntry{
		sess:      sess,
		expiresAt: time.Now().Add(s.ttl),
	}
	return nil
}

// Get reads the state for the session ID, expiring stale entries lazily
func (s *memoryStore) Get(ctx context.Context, sessionID string) (Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[sessionID]
	if !ok {
		return Session{}, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.entries, sessionID)
		return Session{}, false, nil
	}

	return entry.sess, true, nil
}

// End removes the binding, succeeding even if it is already gone
func (s *memoryStore) End(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, sessionID)
	return nil
}
