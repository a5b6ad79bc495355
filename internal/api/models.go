package api

import (
	"time"

	"github.com/phrazzld/study-buddy/internal/session"
)

// GenerateRequest is the payload for deck generation.
type GenerateRequest struct {
	Notes string `json:"notes" validate:"max=100000"`
}

// PaymentRequest carries the payment contact details. They are validated by
// the session controller so the user sees its messages.
type PaymentRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// SessionResponse is returned by every session operation.
type SessionResponse struct {
	Session session.View    `json:"session"`
	Notice  *session.Notice `json:"notice,omitempty"`
	// Empty is set when a load found no saved cards.
	Empty bool `json:"empty,omitempty"`
}

// CreateSessionResponse is returned when a session is created.
type CreateSessionResponse struct {
	SessionID string       `json:"session_id"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	Session   session.View `json:"session"`
}

// HealthResponse reports service health.
type HealthResponse struct {
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
	LiveSessions int       `json:"live_sessions"`
	Backend      string    `json:"backend,omitempty"`
}
