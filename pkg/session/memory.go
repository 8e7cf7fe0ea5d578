package session

import (
	"context"
	"sync"
)

// MemoryStore keeps sessions in process memory. Sessions hold live
// controllers and goroutines, so they cannot be shared between instances.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	expired := ok && sess.IsExpired()
	if expired {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return nil, nil
	}
	if expired {
		sess.Close()
		return nil, ErrExpired
	}
	return sess, nil
}

func (m *MemoryStore) Set(ctx context.Context, sess *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	sess.Close()
	return nil
}

func (m *MemoryStore) Cleanup(ctx context.Context) (int, error) {
	var expired []*Session
	m.mu.Lock()
	for id, sess := range m.sessions {
		if sess.IsExpired() {
			expired = append(expired, sess)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, sess := range expired {
		sess.Close()
	}
	return len(expired), nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close stops every session and empties the store.
func (m *MemoryStore) Close() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, sess := range all {
		sess.Close()
	}
}
