package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Session event types.
const (
	TypeDeckGenerated      = "deck.generated"
	TypeDeckLoaded         = "deck.loaded"
	TypeDeckShuffled       = "deck.shuffled"
	TypeCardFlipped        = "card.flipped"
	TypeCardSaved          = "card.saved"
	TypeProgressReset      = "progress.reset"
	TypePaymentCompleted   = "payment.completed"
	TypePaymentFailed      = "payment.failed"
	TypeEntitlementExpired = "entitlement.expired"
)

// SessionEvent records a state change in one study session.
type SessionEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	// SessionID identifies the session the change happened in; empty for a
	// single-session adapter.
	SessionID string `json:"session_id,omitempty"`

	// Payload carries the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload,omitempty"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *SessionEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewSessionEvent creates a SessionEvent with the given type and payload.
// A nil payload leaves Payload empty.
func NewSessionEvent(eventType, sessionID string, payload interface{}) (*SessionEvent, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}

	return &SessionEvent{
		ID:        uuid.New(),
		Type:      eventType,
		SessionID: sessionID,
		Payload:   raw,
		CreatedAt: time.Now(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *SessionEvent) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *SessionEvent) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *SessionEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *SessionEvent) error
}

// NopEmitter discards every event.
type NopEmitter struct{}

// EmitEvent implements EventEmitter.
func (NopEmitter) EmitEvent(context.Context, *SessionEvent) error { return nil }
