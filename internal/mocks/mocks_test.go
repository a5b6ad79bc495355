package mocks_test

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/study-buddy/internal/domain"
	"github.com/phrazzld/study-buddy/internal/mocks"
	"github.com/phrazzld/study-buddy/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockGenerator(t *testing.T) {
	t.Parallel()

	t.Run("Default cards", func(t *testing.T) {
		t.Parallel()
		gen := mocks.NewMockGeneratorWithCards(mocks.SampleCards(2)...)

		cards, err := gen.Generate(context.Background(), "notes")
		require.NoError(t, err)
		assert.Len(t, cards, 2)
		assert.Equal(t, 1, gen.CallCount())
		assert.Equal(t, []string{"notes"}, gen.GenerateCalls.Notes)
	})

	t.Run("Error", func(t *testing.T) {
		t.Parallel()
		gen := mocks.NewMockGeneratorWithError(domain.ErrUnreachable)

		cards, err := gen.Generate(context.Background(), "notes")
		assert.ErrorIs(t, err, domain.ErrUnreachable)
		assert.Empty(t, cards)
	})
}

func TestSampleCardsAreDistinct(t *testing.T) {
	t.Parallel()

	cards := mocks.SampleCards(12)
	seen := make(map[domain.Card]bool)
	for _, c := range cards {
		assert.True(t, c.Usable())
		assert.False(t, seen[c], "duplicate card %v", c)
		seen[c] = true
	}
}

func TestMockStorage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := mocks.NewMockStorage(map[string]string{"a": "1"})

	v, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Set(ctx, "b", "2"))
	require.NoError(t, s.Delete(ctx, "a", "b"))
	_, ok := s.Value("b")
	assert.False(t, ok)

	s.SetErr = errors.New("boom")
	assert.Error(t, s.Set(ctx, "c", "3"))
}
