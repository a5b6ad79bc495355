package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/phrazzld/study-buddy/internal/api/shared"
	"github.com/phrazzld/study-buddy/internal/platform/logger"
	"github.com/phrazzld/study-buddy/internal/service/auth"
	"github.com/stretchr/testify/assert"
)

// stubTokens accepts "good" and fails everything else with err.
type stubTokens struct{ err error }

func (s stubTokens) IssueToken(context.Context, string) (string, time.Time, error) {
	return "good", time.Time{}, nil
}

func (s stubTokens) ValidateToken(_ context.Context, token string) (*auth.Claims, error) {
	if token == "good" {
		return &auth.Claims{SessionID: "session-1"}, nil
	}
	return nil, s.err
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		header     string
		err        error
		wantStatus int
	}{
		{"valid", "Bearer good", nil, http.StatusOK},
		{"lowercase scheme", "bearer good", nil, http.StatusOK},
		{"missing", "", nil, http.StatusUnauthorized},
		{"no token", "Bearer ", nil, http.StatusUnauthorized},
		{"basic", "Basic good", nil, http.StatusUnauthorized},
		{"expired", "Bearer old", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"invalid", "Bearer bad", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"unexpected", "Bearer bad", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var gotSession string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotSession, _ = shared.GetSessionID(r.Context())
				w.WriteHeader(http.StatusOK)
			})
			h := NewAuthMiddleware(stubTokens{err: tt.err}).Authenticate(next)

			req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "session-1", gotSession)
			}
		})
	}
}

func TestTrace(t *testing.T) {
	t.Parallel()
	log, buf := logger.GetTestLogger(t)

	var traceID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
	})

	rec := httptest.NewRecorder()
	Trace(log)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.NotEmpty(t, traceID)
	assert.Equal(t, traceID, rec.Header().Get("X-Trace-ID"))
	assert.Contains(t, buf.String(), `"trace_id":"`+traceID+`"`)
	assert.Contains(t, buf.String(), "inside handler")
}
