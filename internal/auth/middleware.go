package auth

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/JaimeStill/portal/pkg/handlers"
)

type contextKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session attached by Middleware, or nil for anonymous requests.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}

// Middleware resolves an optional session from the Authorization bearer token
// or the named cookie. Requests without a valid token proceed anonymously;
// enforcement is left to RequireSession and AdminPolicy.Require.
func Middleware(p Provider, cookieName string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r, cookieName)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			s, err := p.Session(r.Context(), token)
			if err != nil {
				logger.Debug("session not resolved", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

// TokenFromRequest extracts a bearer token, falling back to the session cookie.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if after, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(after)
		}
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// RequireSession rejects anonymous requests with 401.
func RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if FromContext(r.Context()) == nil {
			handlers.RespondMessage(w, http.StatusUnauthorized, ErrNoSession.Error())
			return
		}
		next(w, r)
	}
}

// AdminPolicy decides who may call administrative endpoints.
type AdminPolicy struct {
	SuperAdmins []string
	// Bypass admits every request, including anonymous ones.
	// Intended for local development only.
	Bypass bool
}

// IsAdmin reports whether s satisfies the policy.
func (p AdminPolicy) IsAdmin(s *Session) bool {
	if p.Bypass {
		return true
	}
	if s == nil {
		return false
	}
	return slices.ContainsFunc(p.SuperAdmins, func(email string) bool {
		return strings.EqualFold(email, s.Email)
	})
}

// Require wraps next with the admin gate: 401 without a session, 403 for non-admins.
func (p AdminPolicy) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := FromContext(r.Context())
		if p.IsAdmin(s) {
			next(w, r)
			return
		}
		if s == nil {
			handlers.RespondMessage(w, http.StatusUnauthorized, ErrNoSession.Error())
			return
		}
		handlers.RespondMessage(w, http.StatusForbidden, forbiddenMessage)
	}
}
