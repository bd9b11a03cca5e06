package middleware

import (
	"context"
	"net/http"
	"strings"

	"event-booking/pkg/apperror"
	"event-booking/pkg/utils"

	"go.uber.org/zap"
)

// Authenticator resolves a bearer token into the caller's session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*utils.Session, error)
}

// AuthSession rejects requests without a valid session token and stores the
// resolved session in the request context.
func AuthSession(auth Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			scheme, token, found := strings.Cut(authHeader, " ")
			token = strings.TrimSpace(token)
			if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			session, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if apperror.KindOf(err) == apperror.KindUnauthorized {
					logger.Warn("Invalid or expired session", zap.Error(err), zap.String("path", r.URL.Path))
					utils.ResponseUnauthorized(w, "Invalid or expired session")
					return
				}
				logger.Error("Failed to validate session", zap.Error(err))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(utils.WithSession(r.Context(), session)))
		})
	}
}

// Admin only lets sessions with the admin role through. It must run after AuthSession.
func Admin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := utils.SessionFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			if !session.IsAdmin() {
				logger.Warn("Admin check: non-admin access attempt",
					zap.String("user_id", session.UserID.String()),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
