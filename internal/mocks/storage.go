package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/study-buddy/internal/store"
)

// MockStorage implements session.Storage over a map. Set the *Err fields to
// make the corresponding method fail.
type MockStorage struct {
	mu     sync.Mutex
	values map[string]string

	GetErr    error
	SetErr    error
	DeleteErr error
}

// NewMockStorage creates storage seeded with values.
func NewMockStorage(values map[string]string) *MockStorage {
	m := &MockStorage{values: make(map[string]string, len(values))}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

// Get implements the session.Storage interface
func (m *MockStorage) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return "", m.GetErr
	}
	v, ok := m.values[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return v, nil
}

// Set implements the session.Storage interface
func (m *MockStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}

// Delete implements the session.Storage interface
func (m *MockStorage) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

// Value returns the stored value for key and whether it exists.
func (m *MockStorage) Value(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}
