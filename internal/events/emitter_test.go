package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEvent(t *testing.T, eventType string) *SessionEvent {
	t.Helper()
	event, err := NewSessionEvent(eventType, "session-1", nil)
	require.NoError(t, err)
	return event
}

func TestInMemoryEventEmitter(t *testing.T) {
	t.Parallel()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("no subscribers", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(logger)
		assert.NoError(t, emitter.EmitEvent(ctx, newTestEvent(t, TypeDeckShuffled)))
	})

	t.Run("nil event", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(logger)
		assert.Error(t, emitter.EmitEvent(ctx, nil))
	})

	t.Run("every subscriber receives the event", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(logger)
		first, second := &MockEventHandler{}, &MockEventHandler{}
		emitter.RegisterHandler(first)
		emitter.RegisterHandler(second)

		event := newTestEvent(t, TypeDeckGenerated)
		require.NoError(t, emitter.EmitEvent(ctx, event))

		assert.Equal(t, 1, first.HandledCount)
		assert.Equal(t, 1, second.HandledCount)
		assert.Same(t, event, first.LastEvent)
	})

	t.Run("typed subscription filters events", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(logger)
		payments := &MockEventHandler{}
		emitter.Subscribe(payments, TypePaymentCompleted, TypePaymentFailed)

		require.NoError(t, emitter.EmitEvent(ctx, newTestEvent(t, TypeCardFlipped)))
		assert.Zero(t, payments.HandledCount)

		require.NoError(t, emitter.EmitEvent(ctx, newTestEvent(t, TypePaymentFailed)))
		assert.Equal(t, 1, payments.HandledCount)
	})

	t.Run("failures are joined and delivery continues", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(logger)
		errFirst := errors.New("first failed")
		failing := &MockEventHandler{HandlerError: errFirst}
		panicking := HandlerFunc(func(context.Context, *SessionEvent) error { panic("boom") })
		healthy := &MockEventHandler{}
		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(panicking)
		emitter.RegisterHandler(healthy)

		err := emitter.EmitEvent(ctx, newTestEvent(t, TypeCardSaved))
		require.Error(t, err)
		assert.ErrorIs(t, err, errFirst)
		assert.Contains(t, err.Error(), "handler panicked: boom")
		assert.Equal(t, 1, healthy.HandledCount)
	})
}
