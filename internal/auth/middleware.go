package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/pkg/logger"
)

// UserIDHeader carries the opaque caller identifier on every request.
const UserIDHeader = "X-User-ID"

// Middleware verifies the caller identity header and stores the resolved
// User in the request context. Requests with a missing or unknown identity
// are rejected with 401.
func Middleware(verifier Verifier, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get(UserIDHeader)

			user, err := verifier.Verify(userID)
			if err != nil {
				logger.From(r.Context()).Warn("identity rejected", "user_id", userID, "path", r.URL.Path)
				writeUnauthorized(w, err)
				return
			}

			ctx := ContextWithUser(r.Context(), user)
			ctx = logger.With(ctx, "user_id", user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	body := map[string]string{"error": "unauthorized"}
	if appErr, ok := internal.IsAppError(err); ok && appErr.Detail != "" {
		body["details"] = appErr.Detail
	}
	_ = json.NewEncoder(w).Encode(body)
}
