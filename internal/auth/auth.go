// Package auth defines the credential provider contract and its implementations.
// A single Provider is selected at startup from configuration; handlers only ever
// see the interface and the Session values it resolves.
package auth

import (
	"context"
	"time"
)

// Session is an authenticated identity resolved from an opaque token.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session has passed its expiry at the given time.
// A zero ExpiresAt never expires.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Provider resolves, creates, and destroys sessions.
type Provider interface {
	// Name identifies the implementation (memory, hosted, oidc).
	Name() string
	// Session resolves a token into a Session. Returns ErrNoSession when the
	// token is unknown, invalid, or expired.
	Session(ctx context.Context, token string) (*Session, error)
	// SignIn exchanges credentials for a new Session.
	// Returns ErrInvalidCredentials on a credential mismatch.
	SignIn(ctx context.Context, email, password string) (*Session, error)
	// SignOut invalidates the token. Unknown tokens are not an error.
	SignOut(ctx context.Context, token string) error
}
