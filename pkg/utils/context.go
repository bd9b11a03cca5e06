package utils

import (
	"context"

	"github.com/google/uuid"
)

// Session is the authenticated caller of a request. It is created by the auth
// middleware from a verified session token and handed explicitly to services.
type Session struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Name   string
	Email  string
	Role   string
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == "admin"
}

type contextKey string

const sessionKey contextKey = "session"

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext returns the session set by the auth middleware.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok && s != nil
}
