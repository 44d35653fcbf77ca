// Package session carries the authenticated staff context through a request.
package session

import (
	"context"
	"time"
)

// Session is the authentication context established at login.
type Session struct {
	UserID    string
	Name      string
	Role      Role
	Token     string
	ExpiresAt time.Time
}

// Can reports whether the session's role grants the capability.
// A nil session grants nothing.
func (s *Session) Can(c Capability) bool {
	if s == nil {
		return false
	}
	return s.Role.Can(c)
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || !now.Before(s.ExpiresAt)
}

type contextKey struct{}

// Attach returns a context carrying the session.
func Attach(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// From retrieves the session from the context, or nil.
func From(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}
