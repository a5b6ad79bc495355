package session

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/study-buddy/internal/platform/logger"
	"github.com/phrazzld/study-buddy/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepSkipsPinnedSession(t *testing.T) {
	t.Parallel()
	log, _ := logger.GetTestLogger(t)
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	ctrl := &Controller{}
	r := &Registry{
		sessions: map[string]*entry{"s1": {ctrl: ctrl, lastUsed: now}},
		store:    store.NewMemoryStore(),
		now:      func() time.Time { return now },
		logger:   log,
	}

	// A Do that has looked the session up but not yet locked it.
	e, err := r.acquire("s1")
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 0, r.Sweep(time.Hour))
	assert.Equal(t, 1, r.Len())

	r.release(e)

	// The release counts as use, so the session is not idle yet.
	assert.Equal(t, 0, r.Sweep(time.Hour))

	var got *Controller
	require.NoError(t, r.Do(context.Background(), "s1", func(c *Controller) error {
		got = c
		return nil
	}))
	assert.Same(t, ctrl, got)

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, r.Sweep(time.Hour))
	assert.ErrorIs(t, r.Do(context.Background(), "s1", func(*Controller) error { return nil }), ErrSessionNotFound)
}
