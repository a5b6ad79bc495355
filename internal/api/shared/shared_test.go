package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/study-buddy/internal/domain"
	"github.com/phrazzld/study-buddy/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithErrorAndLogRedacts(t *testing.T) {
	t.Parallel()
	log, buf := logger.GetTestLogger(t)

	req := httptest.NewRequest(http.MethodPost, "/api/session/payment", nil)
	ctx := logger.WithLogger(SetTraceID(req.Context()), log)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	err := errors.New("charge failed for user@example.com on +254700000000")
	RespondWithErrorAndLog(rec, req, http.StatusBadGateway, "Payment failed. Please try again.", "error", err)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Payment failed. Please try again.", body.Error)
	assert.Equal(t, "error", body.Level)
	assert.Equal(t, GetTraceID(ctx), body.TraceID)
	assert.Len(t, body.TraceID, 2*TraceIDLength)

	logged := buf.String()
	assert.Contains(t, logged, `"level":"ERROR"`)
	assert.NotContains(t, logged, "user@example.com")
	assert.NotContains(t, logged, "+254700000000")
	assert.NotContains(t, rec.Body.String(), "user@example.com")
}

func TestRespondWithText(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()
	RespondWithText(rec, httptest.NewRequest(http.MethodGet, "/", nil), "flashcards-2024-03-05.txt", "hello")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="flashcards-2024-03-05.txt"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "hello", rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()
	type payload struct {
		Notes string `json:"notes" validate:"max=5"`
	}

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		var p payload
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"notes":"abc"}`))
		require.NoError(t, DecodeJSON(httptest.NewRecorder(), req, &p))
		assert.Equal(t, "abc", p.Notes)
		assert.NoError(t, ValidateRequest(&p))
	})

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()
		var p payload
		req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
		assert.NoError(t, DecodeJSON(httptest.NewRecorder(), req, &p))
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()
		var p payload
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"notes":`))
		assert.ErrorIs(t, DecodeJSON(httptest.NewRecorder(), req, &p), domain.ErrValidation)
	})

	t.Run("too large", func(t *testing.T) {
		t.Parallel()
		var p payload
		big := `{"notes":"` + strings.Repeat("a", MaxRequestBytes) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
		assert.ErrorIs(t, DecodeJSON(httptest.NewRecorder(), req, &p), domain.ErrValidation)
	})

	t.Run("validation tags", func(t *testing.T) {
		t.Parallel()
		err := ValidateRequest(&payload{Notes: "too long"})
		var ve *domain.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "Notes", ve.Field)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestSessionIDContext(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := GetSessionID(req.Context())
	assert.False(t, ok)

	id, ok := GetSessionID(WithSessionID(req.Context(), "abc"))
	assert.True(t, ok)
	assert.Equal(t, "abc", id)
}
