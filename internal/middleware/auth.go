package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// userIDHeader carries the caller identity. Authentication happens upstream;
// the game service only needs a stable identifier per player.
const userIDHeader = "X-User-ID"

type contextKey string

const userIDKey contextKey = "userID"

// UserID returns the caller identity stored by RequireUser. Empty when the
// request did not pass through the middleware.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// RequireUser rejects requests without a caller identity and stores the
// identity in the request context for handlers.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(userIDHeader))
		if userID == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Missing " + userIDHeader + " header"})
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
