package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/study-buddy/internal/api/shared"
	"github.com/phrazzld/study-buddy/internal/domain"
	"github.com/phrazzld/study-buddy/internal/service/auth"
	"github.com/phrazzld/study-buddy/internal/session"
)

// ErrPaymentRequired is returned when an export needs a payment first.
var ErrPaymentRequired = errors.New("payment required")

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	var (
		paymentErr *domain.PaymentError
		serviceErr *domain.ServiceError
	)
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrIndexOutOfRange):
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrNoCards):
		return http.StatusConflict

	case errors.Is(err, ErrPaymentRequired),
		errors.As(err, &paymentErr):
		return http.StatusPaymentRequired

	case errors.Is(err, domain.ErrEmptyResult):
		return http.StatusUnprocessableEntity

	case errors.As(err, &serviceErr):
		return http.StatusBadGateway

	case errors.Is(err, domain.ErrUnreachable):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// HandleAPIError writes the error response for err raised by op. The message
// is the user-facing notice for the error, never the raw error text.
func HandleAPIError(w http.ResponseWriter, r *http.Request, op session.Operation, err error) {
	status := MapErrorToStatusCode(err)

	var notice session.Notice
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		notice = session.Notice{Level: session.LevelError, Text: "Session not found. Please start a new session."}
	case errors.Is(err, ErrPaymentRequired):
		notice = session.Notice{Level: session.LevelInfo, Text: "Payment required to download flashcards."}
	default:
		notice = session.UserMessage(op, err)
	}

	shared.RespondWithErrorAndLog(w, r, status, notice.Text, string(notice.Level), err)
}
