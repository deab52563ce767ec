package middleware

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/frahmantamala/expense-tracker/pkg/logger"
)

// RequestID tags every request with a trace id and seeds the ambient
// context logger with it, so downstream middleware and handlers logging
// through logger.From carry the correlation.
func RequestID(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get("X-Trace-ID")
			if traceID == "" {
				traceID = uuid.NewString()
			}

			ctx := logger.NewContext(r.Context(), log.With("trace_id", traceID))

			// propagate back to response
			w.Header().Set("X-Trace-ID", traceID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
