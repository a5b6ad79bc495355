package store

import (
	"context"
	"fmt"
)

// SessionStore keeps string values scoped to a session id.
type SessionStore interface {
	// Get returns the value for key, or an error wrapping ErrNotFound.
	Get(ctx context.Context, sessionID, key string) (string, error)

	// Set creates or replaces the value for key.
	Set(ctx context.Context, sessionID, key, value string) error

	// Delete removes the given keys. Missing keys are ignored.
	Delete(ctx context.Context, sessionID string, keys ...string) error

	// DeleteSession removes every key of the session.
	DeleteSession(ctx context.Context, sessionID string) error
}

// ValidateKey rejects empty session ids and keys before they reach a backend.
func ValidateKey(sessionID, key string) error {
	if sessionID == "" {
		return fmt.Errorf("%w: session id is empty", ErrInvalidEntity)
	}
	if key == "" {
		return fmt.Errorf("%w: key is empty", ErrInvalidEntity)
	}
	return nil
}

// Scoped binds a SessionStore to one session id.
type Scoped struct {
	store     SessionStore
	sessionID string
}

// Scope returns a view of s restricted to sessionID.
func Scope(s SessionStore, sessionID string) *Scoped {
	return &Scoped{store: s, sessionID: sessionID}
}

// SessionID returns the bound session id.
func (s *Scoped) SessionID() string { return s.sessionID }

// Get returns the value for key in the bound session.
func (s *Scoped) Get(ctx context.Context, key string) (string, error) {
	return s.store.Get(ctx, s.sessionID, key)
}

// Set stores value under key in the bound session.
func (s *Scoped) Set(ctx context.Context, key, value string) error {
	return s.store.Set(ctx, s.sessionID, key, value)
}

// Delete removes keys from the bound session.
func (s *Scoped) Delete(ctx context.Context, keys ...string) error {
	return s.store.Delete(ctx, s.sessionID, keys...)
}
