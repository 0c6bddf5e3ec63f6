// internal/api/middleware/auth.go
package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"investpay/internal/repository"
	"investpay/internal/util"
)

type contextKey string

const userIDKey contextKey = "user_id"

// UserIDFromContext returns the authenticated user's id placed by Authenticator.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	return userID, ok
}

// WithUserID returns a context carrying the user id, as Authenticator would
// set it.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Authenticator resolves the bearer token to a user id via the sessions
// table and stores it in the request context. Tokens are never compared in
// plain text; the stored value is a SHA-256 hash.
func Authenticator(q repository.DBExecutor, sessions repository.SessionRepository, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondUnauthenticated(w)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondUnauthenticated(w)
				return
			}

			hash := sha256.Sum256([]byte(parts[1]))
			tokenHash := hex.EncodeToString(hash[:])

			userID, err := sessions.GetUserIDByTokenHash(r.Context(), q, tokenHash)
			if err != nil {
				if !util.IsError(err, util.ErrUnauthenticated) {
					logger.Error("Session lookup failed", "error", err)
				}
				respondUnauthenticated(w)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondUnauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   "UNAUTHENTICATED",
	})
}
