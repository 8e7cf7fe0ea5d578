// Package session tracks interactive viewer sessions for the HTTP server.
//
// Each websocket client of `flowatlas serve` owns a Session: a
// [pipeline.Controller] holding its filters and current year, and the
// [timelapse.Sequencer] driving its map. Sessions expire after a period of
// inactivity and are reaped by [MemoryStore.Cleanup].
//
// # Usage
//
//	store := session.NewMemoryStore()
//	sess := session.New(ctrl, ctrl.Timelapse(timelapse.Loop), session.DefaultTTL)
//	store.Set(ctx, sess)
//
//	sess, err := store.Get(ctx, id)
//	if err != nil || sess == nil {
//	    // unknown or expired
//	}
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flowatlas/flowatlas/pkg/pipeline"
	"github.com/flowatlas/flowatlas/pkg/timelapse"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("session expired")
)

// Default durations.
const (
	// DefaultTTL is how long an idle session is kept.
	DefaultTTL = 30 * time.Minute

	// DefaultCleanupInterval is how often Reap sweeps expired sessions.
	DefaultCleanupInterval = time.Minute
)

// Session is one viewer's interactive state.
type Session struct {
	ID         string
	Controller *pipeline.Controller
	Sequencer  *timelapse.Sequencer
	CreatedAt  time.Time

	mu        sync.Mutex
	ttl       time.Duration
	expiresAt time.Time
}

// New creates a session with a random ID. A non-positive ttl selects
// DefaultTTL.
func New(ctrl *pipeline.Controller, seq *timelapse.Sequencer, ttl time.Duration) *Session {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	return &Session{
		ID:         uuid.NewString(),
		Controller: ctrl,
		Sequencer:  seq,
		CreatedAt:  now,
		ttl:        ttl,
		expiresAt:  now.Add(ttl),
	}
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Now().After(s.expiresAt)
}

// ExpiresAt returns the current expiry time.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

// Touch extends the expiry by the session TTL.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiresAt = time.Now().Add(s.ttl)
}

// Close stops the session's sequencer.
func (s *Session) Close() {
	if s.Sequencer != nil {
		s.Sequencer.Stop()
	}
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist.
	// Returns nil, ErrExpired if the session exists but has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, sess *Session) error

	// Delete closes and removes a session.
	Delete(ctx context.Context, id string) error

	// Cleanup closes and removes expired sessions, returning how many.
	Cleanup(ctx context.Context) (int, error)
}

// Reap calls store.Cleanup every interval until ctx is done.
func Reap(ctx context.Context, store Store, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			store.Cleanup(ctx)
		}
	}
}
