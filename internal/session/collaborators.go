package session

import (
	"context"

	"github.com/phrazzld/study-buddy/internal/domain"
)

// Generator produces flashcards from study notes.
type Generator interface {
	Generate(ctx context.Context, notes string) ([]domain.Card, error)
}

// Library lists and saves cards on the flashcard backend.
type Library interface {
	List(ctx context.Context) ([]domain.SavedCard, error)
	Save(ctx context.Context, card domain.Card) (string, error)
}

// PaymentGateway charges for the export.
type PaymentGateway interface {
	Charge(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error)
}

// Storage is key/value storage scoped to the current session.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Level is the severity of a user-facing notice.
type Level string

// Notice levels.
const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notifier displays transient messages to the user.
type Notifier interface {
	Notify(level Level, text string)
}
