package session

import (
	"errors"
	"fmt"

	"github.com/phrazzld/study-buddy/internal/domain"
)

// Operation names the user action an error came from, so the same error can
// read differently per action.
type Operation string

// User actions.
const (
	OpGenerate Operation = "generate"
	OpLoad     Operation = "load"
	OpSave     Operation = "save"
	OpPayment  Operation = "payment"
	OpExport   Operation = "export"
	OpFlip     Operation = "flip"
)

// Notice is a message to show the user.
type Notice struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Success and informational notices.
var (
	NoticeShuffled       = Notice{LevelInfo, "Cards shuffled! Ready for a new study session."}
	NoticeProgressReset  = Notice{LevelInfo, "Progress reset! Start studying again."}
	NoticePaymentSuccess = Notice{LevelSuccess, "Payment successful! Download starting..."}
	NoticeDownloaded     = Notice{LevelSuccess, "Flashcards downloaded successfully!"}
	NoticeNoSavedCards   = Notice{LevelInfo, "No saved flashcards yet."}
)

// GeneratedNotice reports a successful generation.
func GeneratedNotice(count int) Notice {
	return Notice{LevelSuccess, fmt.Sprintf("Successfully generated %d flashcards!", count)}
}

// SavedNotice reports a successful save, preferring the backend's message.
func SavedNotice(message string) Notice {
	if message == "" {
		message = "Flashcard saved successfully!"
	}
	return Notice{LevelSuccess, message}
}

// UserMessage maps an error from op to the notice shown to the user. Raw
// error text never reaches the user except a PaymentError's reason.
func UserMessage(op Operation, err error) Notice {
	switch {
	case err == nil:
		return Notice{LevelInfo, ""}

	case errors.Is(err, domain.ErrNotesEmpty):
		return Notice{LevelWarning, "Please paste your study notes first."}
	case errors.Is(err, domain.ErrNotesTooShort):
		return Notice{LevelWarning, "Your notes seem too short. Add more content for better flashcards."}
	case errors.Is(err, domain.ErrContactRequired):
		return Notice{LevelWarning, "Please fill in all required fields."}
	case errors.Is(err, domain.ErrInvalidEmail):
		return Notice{LevelWarning, "Please enter a valid email address."}
	case errors.Is(err, domain.ErrInvalidPhone):
		return Notice{LevelWarning, "Please enter a valid phone number (e.g., +254700000000)."}

	case errors.Is(err, domain.ErrValidation):
		return Notice{LevelWarning, "Please check your input and try again."}

	case errors.Is(err, domain.ErrNoCards):
		if op == OpPayment {
			return Notice{LevelWarning, "Generate flashcards first before purchasing download access."}
		}
		return Notice{LevelWarning, "No flashcards to download."}
	case errors.Is(err, domain.ErrIndexOutOfRange):
		return Notice{LevelWarning, "That card does not exist."}
	}

	var pe *domain.PaymentError
	if errors.As(err, &pe) && pe.Reason != "" {
		return Notice{LevelError, pe.Reason}
	}

	switch op {
	case OpGenerate:
		switch {
		case errors.Is(err, domain.ErrUnreachable):
			return Notice{LevelError, "Unable to connect to the server. Please check your connection and try again."}
		case errors.Is(err, domain.ErrEmptyResult):
			return Notice{LevelError, "Couldn't generate flashcards from your notes. Try adding more detailed content with key concepts and facts."}
		case isServiceError(err):
			return Notice{LevelError, "Server is temporarily unavailable. Please try again in a moment."}
		}
		return Notice{LevelError, "Something went wrong while generating flashcards."}
	case OpLoad:
		return Notice{LevelError, "Could not load saved flashcards."}
	case OpSave:
		if errors.Is(err, domain.ErrUnreachable) {
			return Notice{LevelError, "Connection error. Please check your internet and try again."}
		}
		return Notice{LevelError, "Could not save flashcard. Please try again."}
	case OpPayment:
		return Notice{LevelError, "Payment failed. Please try again."}
	}

	if errors.Is(err, domain.ErrUnreachable) {
		return Notice{LevelError, "Unable to connect to the server. Please check your connection and try again."}
	}
	return Notice{LevelError, "Something went wrong. Please try again."}
}

func isServiceError(err error) bool {
	var se *domain.ServiceError
	return errors.As(err, &se)
}
