package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/study-buddy/internal/domain"
)

// getPathIndex reads a 1-based card number from the path and returns the
// 0-based index.
func getPathIndex(r *http.Request, paramName string) (int, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return 0, domain.NewValidationError(paramName, "is required", nil)
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, domain.NewValidationError(paramName, "must be a positive card number", domain.ErrIndexOutOfRange)
	}
	return n - 1, nil
}
