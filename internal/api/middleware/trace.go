package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/study-buddy/internal/api/shared"
	"github.com/phrazzld/study-buddy/internal/platform/logger"
)

// Trace adds a trace ID to the request context and a request-scoped logger
// carrying it. Apply it early so later handlers log with the trace ID.
func Trace(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context())
			traceID := shared.GetTraceID(ctx)

			log := base.With(slog.String("trace_id", traceID))
			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			w.Header().Set("X-Trace-ID", traceID)
			next.ServeHTTP(w, r.WithContext(logger.WithLogger(ctx, log)))
		})
	}
}
