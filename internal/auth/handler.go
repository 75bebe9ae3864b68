package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/portal/pkg/handlers"
	"github.com/JaimeStill/portal/pkg/routes"
)

// SignInRequest carries user credentials.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Handler provides HTTP endpoints for session management.
type Handler struct {
	provider   Provider
	cookieName string
	logger     *slog.Logger
}

// NewHandler creates a Handler over the given provider.
func NewHandler(p Provider, cookieName string, logger *slog.Logger) *Handler {
	return &Handler{
		provider:   p,
		cookieName: cookieName,
		logger:     logger.With("handler", "auth"),
	}
}

// Routes returns the route group definition for auth endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/auth",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/sign-in", Handler: h.SignIn},
			{Method: "POST", Pattern: "/sign-out", Handler: h.SignOut},
			{Method: "GET", Pattern: "/session", Handler: h.Session},
		},
	}
}

// SignIn exchanges credentials for a session and sets the session cookie.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errors.New("email and password are required"))
		return
	}

	s, err := h.provider.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	cookie := &http.Cookie{
		Name:     h.cookieName,
		Value:    s.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if !s.ExpiresAt.IsZero() {
		cookie.Expires = s.ExpiresAt
	}
	http.SetCookie(w, cookie)

	handlers.RespondJSON(w, http.StatusOK, s)
}

// SignOut invalidates the current token and clears the session cookie.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if token := TokenFromRequest(r, h.cookieName); token != "" {
		if err := h.provider.SignOut(r.Context(), token); err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadGateway, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	w.WriteHeader(http.StatusNoContent)
}

// Session returns the session resolved by the auth middleware.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	s := FromContext(r.Context())
	if s == nil {
		handlers.RespondMessage(w, http.StatusUnauthorized, ErrNoSession.Error())
		return
	}
	handlers.RespondJSON(w, http.StatusOK, s)
}
