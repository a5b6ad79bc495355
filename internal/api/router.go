package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/study-buddy/internal/api/middleware"
	"github.com/phrazzld/study-buddy/internal/api/shared"
	"github.com/phrazzld/study-buddy/internal/platform/backend"
	"github.com/phrazzld/study-buddy/internal/platform/metrics"
	"github.com/phrazzld/study-buddy/internal/service/auth"
	"github.com/phrazzld/study-buddy/internal/session"
	"github.com/rs/cors"
)

// BackendChecker reports the health of the flashcard backend.
type BackendChecker interface {
	Health(ctx context.Context) (*backend.HealthStatus, error)
}

// RouterDeps are the dependencies of the HTTP API.
type RouterDeps struct {
	Registry       *session.Registry
	Tokens         auth.TokenService
	Metrics        *metrics.Metrics
	Backend        BackendChecker // optional
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter builds the HTTP API.
func NewRouter(deps RouterDeps) (http.Handler, error) {
	handler, err := NewSessionHandler(deps.Registry, deps.Tokens, deps.Logger)
	if err != nil {
		return nil, err
	}
	authMiddleware := middleware.NewAuthMiddleware(deps.Tokens)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Trace(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}
	r.Use(cors.New(cors.Options{
		AllowedOrigins: deps.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", "X-Trace-ID"},
		MaxAge:         300,
	}).Handler)

	r.Get("/health", healthHandler(deps.Registry, deps.Backend))
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", handler.CreateSession)

		r.Route("/session", func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/", handler.GetSession)
			r.Delete("/", handler.CloseSession)
			r.Post("/generate", handler.Generate)
			r.Post("/load", handler.Load)
			r.Post("/shuffle", handler.Shuffle)
			r.Post("/reset", handler.ResetProgress)
			r.Post("/cards/{number}/flip", handler.Flip)
			r.Post("/cards/{number}/save", handler.Save)
			r.Post("/payment", handler.Pay)
			r.Get("/export", handler.Export)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusNotFound, "Endpoint not found")
	})

	return r, nil
}

func healthHandler(registry *session.Registry, checker BackendChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:       "ok",
			Timestamp:    time.Now().UTC(),
			LiveSessions: registry.Len(),
		}
		if checker != nil {
			resp.Backend = "healthy"
			if _, err := checker.Health(r.Context()); err != nil {
				resp.Backend = "unhealthy"
			}
		}
		shared.RespondWithJSON(w, r, http.StatusOK, resp)
	}
}
