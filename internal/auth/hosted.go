package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// hostedClaims is the access-token payload issued by the hosted auth service.
type hostedClaims struct {
	Email        string `json:"email"`
	UserMetadata struct {
		Role string `json:"role"`
	} `json:"user_metadata"`
	jwt.RegisteredClaims
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type hosted struct {
	baseURL string
	apiKey  string
	secret  []byte
	client  *http.Client
	logger  *slog.Logger
}

// NewHosted creates a provider backed by a hosted auth REST service.
// Sign-in uses the password grant; issued access tokens are HS256 JWTs that
// are verified locally with the shared secret, so Session makes no network call.
func NewHosted(cfg *Config, logger *slog.Logger) Provider {
	return &hosted{
		baseURL: strings.TrimSuffix(cfg.HostedURL, "/"),
		apiKey:  cfg.HostedAPIKey,
		secret:  []byte(cfg.JWTSecret),
		client:  &http.Client{Timeout: cfg.TimeoutDuration()},
		logger:  logger.With("system", "auth", "provider", ProviderHosted),
	}
}

func (h *hosted) Name() string {
	return ProviderHosted
}

func (h *hosted) Session(_ context.Context, token string) (*Session, error) {
	claims := &hostedClaims{}
	parsed, err := jwt.ParseWithClaims(
		token, claims,
		func(t *jwt.Token) (any, error) {
			return h.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrNoSession
	}

	s := &Session{
		Token:  token,
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   claims.UserMetadata.Role,
	}
	if s.Role == "" {
		s.Role = "user"
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

func (h *hosted) SignIn(ctx context.Context, email, password string) (*Session, error) {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	req, err := h.request(ctx, "/auth/v1/token?grant_type=password", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hosted sign-in: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		h.logger.Info("sign-in rejected", "email", email, "status", resp.StatusCode)
		return nil, ErrInvalidCredentials
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("hosted sign-in: status %d: %s", resp.StatusCode, msg)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}

	s, err := h.Session(ctx, tr.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("hosted sign-in: issued token rejected: %w", err)
	}

	h.logger.Info("session created", "user_id", s.UserID)
	return s, nil
}

func (h *hosted) SignOut(ctx context.Context, token string) error {
	req, err := h.request(ctx, "/auth/v1/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("hosted sign-out: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("hosted sign-out: status %d", resp.StatusCode)
	}
	return nil
}

func (h *hosted) request(ctx context.Context, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("apikey", h.apiKey)
	}
	return req, nil
}
