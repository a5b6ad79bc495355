package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

type subscription struct {
	handler EventHandler
	// types filters the delivered events; empty means every type.
	types map[string]struct{}
}

func (s subscription) wants(eventType string) bool {
	if len(s.types) == 0 {
		return true
	}
	_, ok := s.types[eventType]
	return ok
}

// InMemoryEventEmitter delivers session events to its subscribers
// synchronously, in subscription order.
type InMemoryEventEmitter struct {
	mu     sync.RWMutex
	subs   []subscription
	logger *slog.Logger
}

var _ EventEmitter = (*InMemoryEventEmitter)(nil)

// NewInMemoryEventEmitter creates an emitter with no subscribers.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventEmitter{logger: logger.With("component", "event_emitter")}
}

// RegisterHandler subscribes handler to every event type.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.Subscribe(handler)
}

// Subscribe delivers events of the given types to handler, or all events
// when no type is given.
func (e *InMemoryEventEmitter) Subscribe(handler EventHandler, types ...string) {
	sub := subscription{handler: handler}
	if len(types) > 0 {
		sub.types = make(map[string]struct{}, len(types))
		for _, t := range types {
			sub.types[t] = struct{}{}
		}
	}

	e.mu.Lock()
	e.subs = append(e.subs, sub)
	n := len(e.subs)
	e.mu.Unlock()
	e.logger.Debug("subscribed event handler", "types", types, "subscribers", n)
}

// EmitEvent delivers event to every interested subscriber. A failing or
// panicking handler does not stop delivery; all failures are joined into the
// returned error.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *SessionEvent) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	e.mu.RLock()
	subs := append([]subscription(nil), e.subs...)
	e.mu.RUnlock()

	var errs []error
	for i, sub := range subs {
		if !sub.wants(event.Type) {
			continue
		}
		if err := deliver(ctx, sub.handler, event); err != nil {
			e.logger.Warn("event handler failed",
				"error", err,
				"subscriber", i,
				"event_type", event.Type,
				"session_id", event.SessionID)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func deliver(ctx context.Context, h EventHandler, event *SessionEvent) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handler panicked: %v", p)
		}
	}()
	return h.HandleEvent(ctx, event)
}
