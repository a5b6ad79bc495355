package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/study-buddy/internal/domain"
)

// MockLibrary implements session.Library for testing
type MockLibrary struct {
	ListFn   func(ctx context.Context) ([]domain.SavedCard, error)
	SaveFn   func(ctx context.Context, card domain.Card) (string, error)
	DeleteFn func(ctx context.Context, id int64) (string, error)

	// Default response values
	Saved   []domain.SavedCard
	Message string
	ListErr error
	SaveErr error
	// DeleteErr and ClearErr are returned by Delete and ClearAll.
	DeleteErr error
	ClearErr  error

	mu         sync.Mutex
	listCount  int
	savedCards []domain.Card
	deletedIDs []int64
	clearCount int
}

// List implements the session.Library interface
func (m *MockLibrary) List(ctx context.Context) ([]domain.SavedCard, error) {
	m.mu.Lock()
	m.listCount++
	m.mu.Unlock()

	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return m.Saved, m.ListErr
}

// Save implements the session.Library interface
func (m *MockLibrary) Save(ctx context.Context, card domain.Card) (string, error) {
	m.mu.Lock()
	m.savedCards = append(m.savedCards, card)
	m.mu.Unlock()

	if m.SaveFn != nil {
		return m.SaveFn(ctx, card)
	}
	return m.Message, m.SaveErr
}

// ListCount returns how many times List was called.
func (m *MockLibrary) ListCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCount
}

// SavedCards returns every card passed to Save, in call order.
func (m *MockLibrary) SavedCards() []domain.Card {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Card(nil), m.savedCards...)
}

// Delete implements cli.SavedCards
func (m *MockLibrary) Delete(ctx context.Context, id int64) (string, error) {
	m.mu.Lock()
	m.deletedIDs = append(m.deletedIDs, id)
	m.mu.Unlock()

	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return m.Message, m.DeleteErr
}

// ClearAll implements cli.SavedCards
func (m *MockLibrary) ClearAll(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearCount++
	return m.Message, m.ClearErr
}

// DeletedIDs returns every id passed to Delete, in call order.
func (m *MockLibrary) DeletedIDs() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.deletedIDs...)
}

// ClearCount returns how many times ClearAll was called.
func (m *MockLibrary) ClearCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clearCount
}
