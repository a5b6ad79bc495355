package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a session key has no value.
	ErrNotFound = errors.New("not found")

	// ErrInvalidEntity is returned for an empty session id or key.
	ErrInvalidEntity = errors.New("invalid session key")

	// ErrTransactionFailed is returned when a transaction cannot begin or commit.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrSessionValueNotFound is the ErrNotFound variant returned by Get.
	ErrSessionValueNotFound = fmt.Errorf("%w: session value", ErrNotFound)
)

// IsNotFoundError reports whether err means a missing value.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// OpError records which storage operation failed for which session.
type OpError struct {
	Op        string
	SessionID string
	Err       error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("store %s for session %s: %v", e.Op, e.SessionID, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// OpFailed wraps err as an *OpError. A nil err yields nil.
func OpFailed(op, sessionID string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, SessionID: sessionID, Err: err}
}
