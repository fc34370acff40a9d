package middleware

import (
	"context"
	"errors"
	"net/http"

	"luzzen/internal/session"

	"go.uber.org/zap"
)

type contextKey string

const sessionKey contextKey = "session"

// Auth resolves the session cookie against the session store and puts
// the session into the request context. Requests without a valid
// session are rejected with 401.
func Auth(store session.Store, cookieName string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil {
				logger.Debug("Missing session cookie")
				RespondWithError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			sess, err := store.Get(r.Context(), cookie.Value)
			if err != nil {
				if errors.Is(err, session.ErrSessionNotFound) {
					logger.Debug("Session not found or expired")
					RespondWithError(w, http.StatusUnauthorized, "session expired, please log in again")
					return
				}
				logger.Error("Failed to load session", zap.Error(err))
				RespondWithError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)

			logger.Debug("User authenticated",
				zap.String("user_id", sess.UserID.String()),
				zap.Bool("is_admin", sess.IsAdmin),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession extracts the session from the request context
func GetSession(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*session.Session)
	return sess, ok
}
