package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/study-buddy/internal/store"
)

// ErrSessionNotFound is returned for an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

// Factory builds the controller for a session, with storage scoped to it.
type Factory func(sessionID string, storage Storage) (*Controller, error)

type entry struct {
	mu   sync.Mutex
	ctrl *Controller

	// Guarded by Registry.mu. users counts Do calls holding or waiting for mu.
	lastUsed time.Time
	users    int
}

// Registry holds the live sessions of a multi-user adapter. Each session's
// controller is only ever used under that session's lock.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	factory  Factory
	store    store.SessionStore
	now      func() time.Time
	logger   *slog.Logger
}

// NewRegistry creates a Registry. Session storage is scoped per session from s.
func NewRegistry(factory Factory, s store.SessionStore, logger *slog.Logger) (*Registry, error) {
	if factory == nil {
		return nil, errors.New("factory cannot be nil")
	}
	if s == nil {
		return nil, errors.New("session store cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &Registry{
		sessions: make(map[string]*entry),
		factory:  factory,
		store:    s,
		now:      time.Now,
		logger:   logger.With("component", "session_registry"),
	}, nil
}

// Create starts a new session and returns its id.
func (r *Registry) Create(ctx context.Context) (string, error) {
	id := uuid.NewString()
	if err := r.Resume(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}

// Resume makes sure a session with id is live, rebuilding it from storage if
// it was swept or the process restarted. It is a no-op for a live session.
func (r *Registry) Resume(ctx context.Context, id string) error {
	r.mu.Lock()
	if _, ok := r.sessions[id]; ok {
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	ctrl, err := r.factory(id, store.Scope(r.store, id))
	if err != nil {
		return fmt.Errorf("creating session controller: %w", err)
	}
	if err := ctrl.RestoreEntitlement(ctx); err != nil {
		r.logger.Warn("could not restore entitlement", "session_id", id, "error", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		r.sessions[id] = &entry{ctrl: ctrl, lastUsed: r.now()}
		r.logger.Debug("session started", "session_id", id, "live_sessions", len(r.sessions))
	}
	return nil
}

// Do runs fn with the session's controller while holding the session lock.
func (r *Registry) Do(ctx context.Context, id string, fn func(*Controller) error) error {
	e, err := r.acquire(id)
	if err != nil {
		return err
	}
	defer r.release(e)

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.ctrl)
}

// acquire pins the session so Sweep cannot drop it before release.
func (r *Registry) acquire(id string) (*entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.users++
	e.lastUsed = r.now()
	return e, nil
}

func (r *Registry) release(e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.users--
	e.lastUsed = r.now()
}

// Close ends a session and deletes its stored values. Closing a session that
// is not live still deletes its storage.
func (r *Registry) Close(ctx context.Context, id string) error {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()

	if err := r.store.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("deleting session storage: %w", err)
	}
	r.logger.Debug("session closed", "session_id", id)
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than idle and returns how many were
// dropped. Stored values are kept so an entitlement survives until it
// expires; busy sessions are skipped.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()

	dropped := 0
	for id, e := range r.sessions {
		if e.users > 0 || !e.lastUsed.Before(cutoff) {
			continue
		}
		delete(r.sessions, id)
		dropped++
	}
	if dropped > 0 {
		r.logger.Info("swept idle sessions", "dropped", dropped, "live_sessions", len(r.sessions))
	}
	return dropped
}

// RunSweeper calls Sweep every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(idle)
		}
	}
}
