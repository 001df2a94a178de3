// Package auth verifies bearer sessions and carries them through request
// contexts.
package auth

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Session is the authenticated caller of a request. It is immutable once
// placed in a context.
type Session struct {
	UserID    string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Demo      bool      `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

// Label identifies the session owner in logs and results.
func (s Session) Label() string {
	switch {
	case s.Email != "":
		return s.Email
	case s.UserID != "":
		return s.UserID
	default:
		return "unknown"
	}
}

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

const sessionKey ContextKey = "session"

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFrom extracts the session stored by WithSession.
func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey).(Session)
	return s, ok
}

// ParseBearer extracts the token of an "Authorization: Bearer <token>"
// header value. The scheme is case-insensitive.
func ParseBearer(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", ErrMissingHeader
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrMalformedHeader
	}
	return parts[1], nil
}

// BearerFromRequest is ParseBearer applied to r's Authorization header.
func BearerFromRequest(r *http.Request) (string, error) {
	return ParseBearer(r.Header.Get("Authorization"))
}
