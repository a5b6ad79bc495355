package session_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/study-buddy/internal/domain"
	"github.com/phrazzld/study-buddy/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goldenExport = `AI Study Buddy - Flashcards
==============================

Generated on: 3/5/2024
Total Cards: 2

Card 1:
Q: Capital of France?
A: Paris
----------------------------------------

Card 2:
Q: 2+2?
A: 4
----------------------------------------


Thank you for using AI Study Buddy!
For more features, visit our website.`

func TestExportText(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.gen.Cards = []domain.Card{
		{Question: "Capital of France?", Answer: "Paris"},
		{Question: "2+2?", Answer: "4"},
	}
	_, err := f.ctrl.Generate(context.Background(), longNotes)
	require.NoError(t, err)

	first := f.ctrl.ExportText(baseTime)
	assert.Equal(t, goldenExport, first)
	assert.Equal(t, first, f.ctrl.ExportText(baseTime))
}

func TestExportTextFollowsDeckOrder(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	_, err := f.ctrl.Generate(context.Background(), longNotes)
	require.NoError(t, err)

	deck := f.ctrl.Shuffle()
	text := f.ctrl.ExportText(baseTime)
	prev := -1
	for _, c := range deck.Cards {
		idx := strings.Index(text, "Q: "+c.Question+"\n")
		require.NotEqual(t, -1, idx)
		assert.Greater(t, idx, prev)
		prev = idx
	}
}

func TestExportFilename(t *testing.T) {
	t.Parallel()
	day := time.Date(2025, time.January, 9, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "flashcards-2025-01-09.txt", session.ExportFilename(day))
}
