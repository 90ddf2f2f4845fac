package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryStore is the reference Store implementation: a map guarded by a
// reader/writer lock — unlimited concurrent reads, exclusive writes. It is
// suitable for tests and single-process deployments; use the storage
// backends for anything shared.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewInMemoryStore creates an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string]Session),
	}
}

// Create stores the session, overwriting any record with the same id.
func (s *InMemoryStore) Create(_ context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID] = sess.clone()
	return nil
}

// Get returns a copy of the session, or (nil, nil) when the id is unknown.
func (s *InMemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}

	out := sess.clone()
	return &out, nil
}

// Update replaces an existing session. It is not an upsert: an unknown id
// yields ErrSessionNotFound.
func (s *InMemoryStore) Update(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sess.ID]; !ok {
		return ErrSessionNotFound
	}

	s.sessions[sess.ID] = sess.clone()
	return nil
}

// Delete removes the session. Deleting an absent id is a no-op.
func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// UserSessions returns copies of every session belonging to the user.
func (s *InMemoryStore) UserSessions(_ context.Context, userID uuid.UUID) ([]Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Session
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			out = append(out, sess.clone())
		}
	}
	return out, nil
}

// DeleteUserSessions removes every session belonging to the user and
// returns the count removed.
func (s *InMemoryStore) DeleteUserSessions(_ context.Context, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.UserID == userID {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// CleanupExpired removes every record whose clocks have lapsed, regardless
// of status, and returns the count removed.
func (s *InMemoryStore) CleanupExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.IsExpired() {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}
