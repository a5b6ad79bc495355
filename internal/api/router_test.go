package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/study-buddy/internal/api"
	"github.com/phrazzld/study-buddy/internal/config"
	"github.com/phrazzld/study-buddy/internal/domain"
	"github.com/phrazzld/study-buddy/internal/mocks"
	"github.com/phrazzld/study-buddy/internal/platform/backend"
	"github.com/phrazzld/study-buddy/internal/platform/logger"
	"github.com/phrazzld/study-buddy/internal/platform/metrics"
	"github.com/phrazzld/study-buddy/internal/service/auth"
	"github.com/phrazzld/study-buddy/internal/session"
	"github.com/phrazzld/study-buddy/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const notes = "Photosynthesis converts light energy into chemical energy stored in glucose molecules."

type testServer struct {
	handler  http.Handler
	gen      *mocks.MockGenerator
	library  *mocks.MockLibrary
	payments *mocks.MockPaymentGateway
	registry *session.Registry
}

type fakeBackend struct{ err error }

func (f fakeBackend) Health(context.Context) (*backend.HealthStatus, error) {
	return &backend.HealthStatus{Status: "healthy"}, f.err
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log, _ := logger.GetTestLogger(t)

	ts := &testServer{
		gen:      mocks.NewMockGeneratorWithCards(mocks.SampleCards(3)...),
		library:  &mocks.MockLibrary{Message: "Flashcard saved successfully!"},
		payments: mocks.NewApprovingGateway(),
	}
	factory := func(id string, storage session.Storage) (*session.Controller, error) {
		return session.NewController(session.Deps{
			Generator: ts.gen,
			Library:   ts.library,
			Payments:  ts.payments,
			Storage:   storage,
			Logger:    log,
			SessionID: id,
		}, session.DefaultOptions)
	}
	reg, err := session.NewRegistry(factory, store.NewMemoryStore(), log)
	require.NoError(t, err)
	ts.registry = reg

	tokens, err := auth.NewTokenService(config.AuthConfig{
		JWTSecret:            "test-secret-that-is-long-enough-for-testing",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	h, err := api.NewRouter(api.RouterDeps{
		Registry:       reg,
		Tokens:         tokens,
		Metrics:        metrics.New(reg.Len),
		Backend:        fakeBackend{},
		AllowedOrigins: []string{"https://study.example"},
		Logger:         log,
	})
	require.NoError(t, err)
	ts.handler = h
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) createSession(t *testing.T) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/sessions", "", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp api.CreateSessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	require.NotEmpty(t, resp.SessionID)
	assert.Equal(t, 0, resp.Session.Total)
	return resp.Token
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) api.SessionResponse {
	t.Helper()
	var resp api.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestStudyFlow(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	token := ts.createSession(t)

	rec := ts.do(t, http.MethodPost, "/api/session/generate", token, `{"notes":"`+notes+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeSession(t, rec)
	assert.Equal(t, 3, resp.Session.Total)
	require.NotNil(t, resp.Notice)
	assert.Equal(t, "Successfully generated 3 flashcards!", resp.Notice.Text)

	rec = ts.do(t, http.MethodPost, "/api/session/cards/2/flip", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeSession(t, rec)
	assert.True(t, resp.Session.Cards[1].Reviewed)
	assert.Equal(t, 33, resp.Session.ProgressPercent)

	rec = ts.do(t, http.MethodPost, "/api/session/cards/1/save", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeSession(t, rec)
	assert.True(t, resp.Session.Cards[0].Saved)
	assert.Equal(t, "Flashcard saved successfully!", resp.Notice.Text)

	rec = ts.do(t, http.MethodPost, "/api/session/shuffle", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decodeSession(t, rec).Session.Reviewed)

	rec = ts.do(t, http.MethodPost, "/api/session/reset", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Progress reset! Start studying again.", decodeSession(t, rec).Notice.Text)

	rec = ts.do(t, http.MethodGet, "/api/session", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decodeSession(t, rec).Session.Total)
}

func TestExportRequiresPayment(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	token := ts.createSession(t)

	rec := ts.do(t, http.MethodGet, "/api/session/export", token, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "No flashcards to download.", decodeError(t, rec)["error"])

	rec = ts.do(t, http.MethodPost, "/api/session/generate", token, `{"notes":"`+notes+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/session/export", token, "")
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/session/payment", token, `{"email":"user@","phone":"+254700000000"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please enter a valid email address.", decodeError(t, rec)["error"])
	assert.Empty(t, ts.payments.Requests())

	rec = ts.do(t, http.MethodPost, "/api/session/payment", token, `{"email":"user@example.com","phone":"+254700000000"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeSession(t, rec)
	assert.True(t, resp.Session.ExportUnlocked)
	assert.Equal(t, "Payment successful! Download starting...", resp.Notice.Text)

	rec = ts.do(t, http.MethodGet, "/api/session/export", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `attachment; filename="flashcards-`)
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "AI Study Buddy - Flashcards\n"))
	assert.Contains(t, body, "Total Cards: 3\n")
}

func TestDeclinedPayment(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	ts.payments.Result = &domain.ChargeResult{Success: false, Message: "Insufficient funds"}
	token := ts.createSession(t)
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/session/generate", token, `{"notes":"`+notes+`"}`).Code)

	rec := ts.do(t, http.MethodPost, "/api/session/payment", token, `{"email":"user@example.com","phone":"0700000000"}`)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, "Insufficient funds", decodeError(t, rec)["error"])
}

func TestGenerateErrorStatuses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		genErr     error
		wantStatus int
		wantText   string
	}{
		{"empty notes", `{"notes":"  "}`, nil, http.StatusBadRequest, "Please paste your study notes first."},
		{"short notes", `{"notes":"too short"}`, nil, http.StatusBadRequest, "Your notes seem too short. Add more content for better flashcards."},
		{"malformed body", `{"notes":`, nil, http.StatusBadRequest, ""},
		{"empty result", `{"notes":"` + notes + `"}`, domain.ErrEmptyResult, http.StatusUnprocessableEntity, ""},
		{"unreachable", `{"notes":"` + notes + `"}`, domain.ErrUnreachable, http.StatusServiceUnavailable, "Unable to connect to the server. Please check your connection and try again."},
		{"service error", `{"notes":"` + notes + `"}`, &domain.ServiceError{Operation: "generate", StatusCode: 500}, http.StatusBadGateway, "Server is temporarily unavailable. Please try again in a moment."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ts := newTestServer(t)
			if tt.genErr != nil {
				ts.gen.Cards = nil
				ts.gen.Err = tt.genErr
			}
			token := ts.createSession(t)

			rec := ts.do(t, http.MethodPost, "/api/session/generate", token, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			errResp := decodeError(t, rec)
			assert.NotEmpty(t, errResp["trace_id"])
			if tt.wantText != "" {
				assert.Equal(t, tt.wantText, errResp["error"])
			}
		})
	}
}

func TestLoadEmptyLibrary(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	ts.library.ListErr = domain.ErrNotFound
	token := ts.createSession(t)

	rec := ts.do(t, http.MethodPost, "/api/session/load", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeSession(t, rec)
	assert.True(t, resp.Empty)
	assert.Equal(t, 0, resp.Session.Total)
}

func TestCardNumberValidation(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	token := ts.createSession(t)

	for _, path := range []string{"/api/session/cards/0/flip", "/api/session/cards/abc/save"} {
		rec := ts.do(t, http.MethodPost, path, token, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}

	// Flipping a card beyond the deck is ignored.
	rec := ts.do(t, http.MethodPost, "/api/session/cards/9/flip", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthentication(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	token := ts.createSession(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic " + token},
		{"tampered token", "Bearer " + tamper(token)},
		{"garbage", "Bearer not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			ts.handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

// tamper changes one character of the token's signature.
func tamper(token string) string {
	i := strings.LastIndex(token, ".") + 5
	c := byte('A')
	if token[i] == 'A' {
		c = 'B'
	}
	return token[:i] + string(c) + token[i+1:]
}

func TestSessionSurvivesSweep(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	token := ts.createSession(t)
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/session/generate", token, `{"notes":"`+notes+`"}`).Code)
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/session/payment", token, `{"email":"user@example.com","phone":"0700000000"}`).Code)

	ts.registry.Sweep(-1)
	require.Equal(t, 0, ts.registry.Len())

	// The deck is gone but the paid entitlement is restored from storage.
	rec := ts.do(t, http.MethodGet, "/api/session", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeSession(t, rec)
	assert.Equal(t, 0, resp.Session.Total)
	assert.True(t, resp.Session.ExportUnlocked)
}

func TestCloseSession(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	token := ts.createSession(t)

	rec := ts.do(t, http.MethodDelete, "/api/session", token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, ts.registry.Len())
}

func TestHealthAndMetrics(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	ts.createSession(t)

	rec := ts.do(t, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var health api.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 1, health.LiveSessions)
	assert.Equal(t, "healthy", health.Backend)

	rec = ts.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "studybuddy_live_sessions 1")
	assert.Contains(t, rec.Body.String(), `route="/api/sessions"`)

	rec = ts.do(t, http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/session/generate", nil)
	req.Header.Set("Origin", "https://study.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, "https://study.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
