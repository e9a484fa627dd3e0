// Package session holds the opaque user identifier the backend issues on the
// first chat reply, and the stores that persist it between runs.
package session

import (
	"context"
	"fmt"
	"sync"
)

// Store persists the opaque user identifier. Load returns "" when nothing has
// been saved yet.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, userID string) error
}

// Session is the client-side view of who the backend thinks we are. The id is
// set at most once; later assignments are ignored.
type Session struct {
	store  Store
	userID string
	mu     sync.RWMutex
}

func New(store Store) *Session {
	if store == nil {
		store = NewMemoryStore("")
	}
	return &Session{store: store}
}

// Restore reads the persisted id into the session and returns it.
func (s *Session) Restore(ctx context.Context) (string, error) {
	id, err := s.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("session: load user id: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID == "" {
		s.userID = id
	}
	return s.userID, nil
}

func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Assign records id if the session has none yet and persists it. It reports
// whether this call performed the assignment. A failed save keeps the id in
// memory for the lifetime of the session.
func (s *Session) Assign(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}

	s.mu.Lock()
	if s.userID != "" {
		s.mu.Unlock()
		return false, nil
	}
	s.userID = id
	s.mu.Unlock()

	if err := s.store.Save(ctx, id); err != nil {
		return true, fmt.Errorf("session: save user id: %w", err)
	}
	return true, nil
}

// MemoryStore keeps the id in process memory only.
type MemoryStore struct {
	mu     sync.Mutex
	userID string
	saves  int
}

func NewMemoryStore(initial string) *MemoryStore {
	return &MemoryStore{userID: initial}
}

func (m *MemoryStore) Load(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userID, nil
}

func (m *MemoryStore) Save(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userID = userID
	m.saves++
	return nil
}

// Saves returns how many times Save was called.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
