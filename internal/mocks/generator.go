package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/study-buddy/internal/domain"
)

// MockGenerator implements session.Generator for testing
type MockGenerator struct {
	// GenerateFn allows test cases to mock the Generate behavior
	GenerateFn func(ctx context.Context, notes string) ([]domain.Card, error)

	// Default response values
	Cards []domain.Card
	Err   error

	// Call tracking for verification
	GenerateCalls struct {
		mu    sync.Mutex
		Count int
		Notes []string
	}
}

// Generate implements the session.Generator interface
func (m *MockGenerator) Generate(ctx context.Context, notes string) ([]domain.Card, error) {
	m.GenerateCalls.mu.Lock()
	m.GenerateCalls.Count++
	m.GenerateCalls.Notes = append(m.GenerateCalls.Notes, notes)
	m.GenerateCalls.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, notes)
	}
	return m.Cards, m.Err
}

// CallCount returns how many times Generate was called.
func (m *MockGenerator) CallCount() int {
	m.GenerateCalls.mu.Lock()
	defer m.GenerateCalls.mu.Unlock()
	return m.GenerateCalls.Count
}

// NewMockGeneratorWithCards creates a MockGenerator that returns the specified cards
func NewMockGeneratorWithCards(cards ...domain.Card) *MockGenerator {
	return &MockGenerator{Cards: cards}
}

// NewMockGeneratorWithError creates a MockGenerator that returns the specified error
func NewMockGeneratorWithError(err error) *MockGenerator {
	return &MockGenerator{Err: err}
}

// SampleCards returns n distinct usable cards.
func SampleCards(n int) []domain.Card {
	questions := []string{
		"What is photosynthesis?",
		"Where does the light reaction happen?",
		"What does the Calvin cycle produce?",
		"Which pigment absorbs light?",
		"What gas is released?",
	}
	answers := []string{
		"The conversion of light energy into chemical energy.",
		"In the thylakoid membranes.",
		"Glucose.",
		"Chlorophyll.",
		"Oxygen.",
	}
	cards := make([]domain.Card, n)
	for i := range cards {
		q := questions[i%len(questions)]
		if i >= len(questions) {
			q = q + " (" + string(rune('a'+i/len(questions))) + ")"
		}
		cards[i] = domain.Card{Question: q, Answer: answers[i%len(answers)]}
	}
	return cards
}
