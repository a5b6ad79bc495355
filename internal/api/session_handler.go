package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/study-buddy/internal/api/shared"
	"github.com/phrazzld/study-buddy/internal/platform/logger"
	"github.com/phrazzld/study-buddy/internal/service/auth"
	"github.com/phrazzld/study-buddy/internal/session"
)

// SessionHandler serves the study session endpoints.
type SessionHandler struct {
	registry *session.Registry
	tokens   auth.TokenService
	logger   *slog.Logger
	now      func() time.Time
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(registry *session.Registry, tokens auth.TokenService, logger *slog.Logger) (*SessionHandler, error) {
	if registry == nil {
		return nil, errors.New("registry cannot be nil")
	}
	if tokens == nil {
		return nil, errors.New("token service cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &SessionHandler{
		registry: registry,
		tokens:   tokens,
		logger:   logger.With("component", "session_handler"),
		now:      time.Now,
	}, nil
}

// withSession resumes the authenticated session and runs fn under its lock.
func (h *SessionHandler) withSession(r *http.Request, fn func(*session.Controller) error) error {
	id, ok := shared.GetSessionID(r.Context())
	if !ok {
		return session.ErrSessionNotFound
	}
	ctx := logger.WithLogger(r.Context(), logger.FromContextOrDefault(r.Context(), h.logger).With("session_id", id))
	if err := h.registry.Resume(ctx, id); err != nil {
		return err
	}
	return h.registry.Do(ctx, id, fn)
}

// respond runs fn and writes the resulting view. fn returns the notice to
// show, if any.
func (h *SessionHandler) respond(
	w http.ResponseWriter,
	r *http.Request,
	op session.Operation,
	fn func(ctx context.Context, c *session.Controller) (*session.Notice, bool, error),
) {
	var resp SessionResponse
	err := h.withSession(r, func(c *session.Controller) error {
		notice, empty, err := fn(r.Context(), c)
		if err != nil {
			return err
		}
		resp = SessionResponse{Session: c.View(), Notice: notice, Empty: empty}
		return nil
	})
	if err != nil {
		HandleAPIError(w, r, op, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// CreateSession handles POST /api/sessions.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := h.registry.Create(r.Context())
	if err != nil {
		HandleAPIError(w, r, "", err)
		return
	}
	token, expiresAt, err := h.tokens.IssueToken(r.Context(), id)
	if err != nil {
		_ = h.registry.Close(r.Context(), id)
		HandleAPIError(w, r, "", err)
		return
	}

	var view session.View
	if err := h.registry.Do(r.Context(), id, func(c *session.Controller) error {
		view = c.View()
		return nil
	}); err != nil {
		HandleAPIError(w, r, "", err)
		return
	}

	log.Info("session created", "session_id", id)
	shared.RespondWithJSON(w, r, http.StatusCreated, CreateSessionResponse{
		SessionID: id,
		Token:     token,
		ExpiresAt: expiresAt,
		Session:   view,
	})
}

// CloseSession handles DELETE /api/session.
func (h *SessionHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.GetSessionID(r.Context())
	if !ok {
		HandleAPIError(w, r, "", session.ErrSessionNotFound)
		return
	}
	if err := h.registry.Close(r.Context(), id); err != nil {
		HandleAPIError(w, r, "", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSession handles GET /api/session.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "", func(context.Context, *session.Controller) (*session.Notice, bool, error) {
		return nil, false, nil
	})
}

// Generate handles POST /api/session/generate.
func (h *SessionHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, session.OpGenerate, err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, session.OpGenerate, err)
		return
	}

	h.respond(w, r, session.OpGenerate, func(ctx context.Context, c *session.Controller) (*session.Notice, bool, error) {
		deck, err := c.Generate(ctx, req.Notes)
		if err != nil {
			return nil, false, err
		}
		n := session.GeneratedNotice(deck.Len())
		return &n, false, nil
	})
}

// Load handles POST /api/session/load.
func (h *SessionHandler) Load(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, session.OpLoad, func(ctx context.Context, c *session.Controller) (*session.Notice, bool, error) {
		deck, err := c.Load(ctx)
		if err != nil {
			return nil, false, err
		}
		if deck == nil {
			n := session.NoticeNoSavedCards
			return &n, true, nil
		}
		return nil, false, nil
	})
}

// Flip handles POST /api/session/cards/{number}/flip.
func (h *SessionHandler) Flip(w http.ResponseWriter, r *http.Request) {
	index, err := getPathIndex(r, "number")
	if err != nil {
		HandleAPIError(w, r, session.OpFlip, err)
		return
	}
	h.respond(w, r, session.OpFlip, func(_ context.Context, c *session.Controller) (*session.Notice, bool, error) {
		c.Flip(index)
		return nil, false, nil
	})
}

// Shuffle handles POST /api/session/shuffle.
func (h *SessionHandler) Shuffle(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "", func(_ context.Context, c *session.Controller) (*session.Notice, bool, error) {
		if c.Deck().Empty() {
			return nil, false, nil
		}
		c.Shuffle()
		n := session.NoticeShuffled
		return &n, false, nil
	})
}

// ResetProgress handles POST /api/session/reset.
func (h *SessionHandler) ResetProgress(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "", func(_ context.Context, c *session.Controller) (*session.Notice, bool, error) {
		c.ResetProgress()
		n := session.NoticeProgressReset
		return &n, false, nil
	})
}

// Save handles POST /api/session/cards/{number}/save.
func (h *SessionHandler) Save(w http.ResponseWriter, r *http.Request) {
	index, err := getPathIndex(r, "number")
	if err != nil {
		HandleAPIError(w, r, session.OpSave, err)
		return
	}
	h.respond(w, r, session.OpSave, func(ctx context.Context, c *session.Controller) (*session.Notice, bool, error) {
		msg, err := c.Save(ctx, index)
		if err != nil {
			return nil, false, err
		}
		n := session.SavedNotice(msg)
		return &n, false, nil
	})
}

// Pay handles POST /api/session/payment.
func (h *SessionHandler) Pay(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, session.OpPayment, err)
		return
	}
	h.respond(w, r, session.OpPayment, func(ctx context.Context, c *session.Controller) (*session.Notice, bool, error) {
		if err := c.CompletePayment(ctx, req.Email, req.Phone); err != nil {
			return nil, false, err
		}
		n := session.NoticePaymentSuccess
		return &n, false, nil
	})
}

// Export handles GET /api/session/export. It answers 402 until the export is
// paid for and 409 when there are no cards.
func (h *SessionHandler) Export(w http.ResponseWriter, r *http.Request) {
	var text string
	now := h.now()
	err := h.withSession(r, func(c *session.Controller) error {
		decision := c.RequestExport(r.Context())
		switch decision.Outcome {
		case session.ExportAllowed:
			text = c.ExportText(now)
			return nil
		case session.ExportBlocked:
			return decision.Reason
		default:
			return ErrPaymentRequired
		}
	})
	if err != nil {
		HandleAPIError(w, r, session.OpExport, err)
		return
	}
	shared.RespondWithText(w, r, session.ExportFilename(now), text)
}
