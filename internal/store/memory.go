package store

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is a SessionStore kept in process memory. Values do not
// survive a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]string
}

var _ SessionStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]map[string]string)}
}

// Get implements SessionStore.
func (m *MemoryStore) Get(_ context.Context, sessionID, key string) (string, error) {
	if err := ValidateKey(sessionID, key); err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.sessions[sessionID][key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSessionValueNotFound, key)
	}
	return v, nil
}

// Set implements SessionStore.
func (m *MemoryStore) Set(_ context.Context, sessionID, key, value string) error {
	if err := ValidateKey(sessionID, key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	values, ok := m.sessions[sessionID]
	if !ok {
		values = make(map[string]string)
		m.sessions[sessionID] = values
	}
	values[key] = value
	return nil
}

// Delete implements SessionStore.
func (m *MemoryStore) Delete(_ context.Context, sessionID string, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	values := m.sessions[sessionID]
	for _, k := range keys {
		delete(values, k)
	}
	if len(values) == 0 {
		delete(m.sessions, sessionID)
	}
	return nil
}

// DeleteSession implements SessionStore.
func (m *MemoryStore) DeleteSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}
