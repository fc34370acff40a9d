package middleware

import (
	"net/http"

	"go.uber.org/zap"
)

// RequireAdmin middleware ensures the session belongs to an administrator
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := GetSession(r.Context())
			if !ok {
				logger.Warn("Session not found in context")
				RespondWithError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			if !sess.IsAdmin {
				logger.Warn("Non-admin user attempted to access admin endpoint",
					zap.String("user_id", sess.UserID.String()),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
