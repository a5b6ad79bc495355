package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when user input fails local validation.
	// The more specific input errors below all wrap it.
	ErrValidation = errors.New("validation failed")

	// ErrNotesEmpty is returned when the study notes are blank after trimming.
	ErrNotesEmpty = fmt.Errorf("%w: notes are empty", ErrValidation)

	// ErrNotesTooShort is returned when the study notes are below the minimum length.
	ErrNotesTooShort = fmt.Errorf("%w: notes are too short", ErrValidation)

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = fmt.Errorf("%w: invalid email format", ErrValidation)

	// ErrInvalidPhone is returned when a phone number is malformed.
	ErrInvalidPhone = fmt.Errorf("%w: invalid phone format", ErrValidation)

	// ErrContactRequired is returned when payment contact details are missing.
	ErrContactRequired = fmt.Errorf("%w: contact details required", ErrValidation)

	// ErrUnreachable is returned when a remote collaborator could not be reached.
	ErrUnreachable = errors.New("remote service unreachable")

	// ErrEmptyResult is returned when generation yields no usable cards.
	ErrEmptyResult = errors.New("no usable cards generated")

	// ErrNotFound is returned when a remote resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPaymentFailed is the sentinel every PaymentError unwraps to.
	ErrPaymentFailed = errors.New("payment failed")

	// ErrNoCards is returned when an operation needs a non-empty deck.
	ErrNoCards = errors.New("deck has no cards")

	// ErrIndexOutOfRange is returned for a card index outside the deck.
	ErrIndexOutOfRange = errors.New("card index out of range")

	// ErrEntitlementTimestamp is returned when an entitlement is granted
	// without a grant time.
	ErrEntitlementTimestamp = errors.New("entitlement grant time is required")
)

// ValidationError describes a single invalid input field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Unwrap returns the specific sentinel, or ErrValidation if none was set.
func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrValidation
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}

// ServiceError is returned when a remote collaborator answered with a
// non-success status.
type ServiceError struct {
	Operation  string
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s failed with status %d: %s", e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s failed with status %d", e.Operation, e.StatusCode)
}

// PaymentError is returned when the payment collaborator declined or failed
// the charge. Reason is safe to show to the user.
type PaymentError struct {
	Reason string
}

// Error implements the error interface.
func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment failed: %s", e.Reason)
}

// Unwrap allows errors.Is(err, ErrPaymentFailed).
func (e *PaymentError) Unwrap() error {
	return ErrPaymentFailed
}
