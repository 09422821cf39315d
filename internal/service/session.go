package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mindsukoon.app/companion/common/logger"
	"mindsukoon.app/companion/internal/companion"
	"mindsukoon.app/companion/internal/model"
)

var ErrSessionNotFound = errors.New("session not found")

// AssistantFactory builds the assistant that serves a new session.
type AssistantFactory func(sessionID string) *companion.Assistant

type session struct {
	assistant  *companion.Assistant
	createdAt  time.Time
	lastActive time.Time
	turns      int
}

// SessionRegistry keeps anonymous conversations in memory and forgets them
// once they have been idle for longer than the configured timeout.
type SessionRegistry struct {
	factory     AssistantFactory
	idleTimeout time.Duration
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

type SessionRegistryOption func(*SessionRegistry)

// WithClock overrides the registry's time source.
func WithClock(now func() time.Time) SessionRegistryOption {
	return func(r *SessionRegistry) { r.now = now }
}

func NewSessionRegistry(factory AssistantFactory, idleTimeout time.Duration, opts ...SessionRegistryOption) *SessionRegistry {
	r := &SessionRegistry{
		factory:     factory,
		idleTimeout: idleTimeout,
		now:         time.Now,
		sessions:    make(map[string]*session),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *SessionRegistry) Create() model.Session {
	id := uuid.NewString()
	now := r.now()
	s := &session{
		assistant:  r.factory(id),
		createdAt:  now,
		lastActive: now,
	}

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	return s.snapshot(id)
}

// Acquire returns the session's assistant and marks the session active.
func (r *SessionRegistry) Acquire(id string) (*companion.Assistant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.lastActive = r.now()
	s.turns++
	return s.assistant, nil
}

// Lookup returns the session's assistant without counting as activity.
func (r *SessionRegistry) Lookup(id string) (*companion.Assistant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.assistant, nil
}

func (r *SessionRegistry) Get(id string) (model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return model.Session{}, ErrSessionNotFound
	}
	return s.snapshot(id), nil
}

func (r *SessionRegistry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the timeout and returns how many
// were dropped. A non-positive timeout disables expiry.
func (r *SessionRegistry) Sweep() int {
	if r.idleTimeout <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idleTimeout)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.lastActive.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps on every tick until ctx is cancelled.
func (r *SessionRegistry) Run(ctx context.Context, interval time.Duration) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "companion.service.sessions",
	})

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				slog.InfoContext(ctx, "expired idle sessions", "count", n, "active", r.Len())
			}
		}
	}
}

func (s *session) snapshot(id string) model.Session {
	return model.Session{
		ID:         id,
		CreatedAt:  s.createdAt,
		LastActive: s.lastActive,
		Turns:      s.turns,
	}
}
