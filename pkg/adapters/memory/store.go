package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/stepwise/pkg/ports"
)

// Store implements ports.SessionStore in memory.
// Sessions are live objects, so values are stored as-is and never copied.
// Safe for concurrent use.
type Store[T any] struct {
	data map[string]T
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		data: make(map[string]T),
	}
}

// Save keeps the session in memory.
func (s *Store[T]) Save(ctx context.Context, sessionID string, session T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = session
	return nil
}

// Load retrieves the session from memory.
func (s *Store[T]) Load(ctx context.Context, sessionID string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.data[sessionID]
	if !ok {
		var zero T
		return zero, ports.ErrSessionNotFound
	}
	return session, nil
}

// Delete removes the session.
func (s *Store[T]) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns active session ids in sorted order.
func (s *Store[T]) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	sort.Strings(sessions)
	return sessions, nil
}
