package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/JaimeStill/portal/internal/auth"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func memoryConfig(t *testing.T) *auth.Config {
	t.Helper()
	cfg := &auth.Config{SeedPassword: "s3cret"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return cfg
}

func TestConfigFinalize(t *testing.T) {
	t.Run("memory defaults", func(t *testing.T) {
		cfg := memoryConfig(t)
		if cfg.Provider != auth.ProviderMemory {
			t.Errorf("provider = %q, want memory", cfg.Provider)
		}
		if cfg.CookieName != "portal_session" {
			t.Errorf("cookie = %q", cfg.CookieName)
		}
		if cfg.SessionTTLDuration() != 24*time.Hour {
			t.Errorf("ttl = %v", cfg.SessionTTLDuration())
		}
		if len(cfg.SuperAdmins) != 1 || cfg.SuperAdmins[0] != cfg.SeedEmail {
			t.Errorf("super admins = %v", cfg.SuperAdmins)
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := &auth.Config{Provider: "ldap"}
		if err := cfg.Finalize(nil); !errors.Is(err, auth.ErrUnknownProvider) {
			t.Errorf("err = %v, want ErrUnknownProvider", err)
		}
	})

	t.Run("hosted requires secret", func(t *testing.T) {
		cfg := &auth.Config{Provider: auth.ProviderHosted, HostedURL: "http://x"}
		if err := cfg.Finalize(nil); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("TEST_AUTH_ADMINS", "a@x.com, b@x.com")
		t.Setenv("TEST_AUTH_BYPASS", "true")
		cfg := &auth.Config{SeedPassword: "p"}
		err := cfg.Finalize(&auth.Env{
			SuperAdmins: "TEST_AUTH_ADMINS",
			AdminBypass: "TEST_AUTH_BYPASS",
		})
		if err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if len(cfg.SuperAdmins) != 2 || cfg.SuperAdmins[1] != "b@x.com" {
			t.Errorf("super admins = %v", cfg.SuperAdmins)
		}
		if !cfg.AdminBypass {
			t.Error("bypass not applied")
		}
	})
}

func TestMemoryProvider(t *testing.T) {
	cfg := memoryConfig(t)
	p, err := auth.New(cfg, discard())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	if p.Name() != auth.ProviderMemory {
		t.Errorf("name = %q", p.Name())
	}

	t.Run("rejects bad password", func(t *testing.T) {
		_, err := p.SignIn(ctx, cfg.SeedEmail, "wrong")
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Errorf("err = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("session round trip", func(t *testing.T) {
		s, err := p.SignIn(ctx, strings.ToUpper(cfg.SeedEmail), "s3cret")
		if err != nil {
			t.Fatalf("sign in: %v", err)
		}
		if s.Role != "admin" {
			t.Errorf("role = %q", s.Role)
		}

		got, err := p.Session(ctx, s.Token)
		if err != nil {
			t.Fatalf("session: %v", err)
		}
		if got.UserID != s.UserID {
			t.Errorf("user id = %q, want %q", got.UserID, s.UserID)
		}

		if err := p.SignOut(ctx, s.Token); err != nil {
			t.Fatalf("sign out: %v", err)
		}
		if _, err := p.Session(ctx, s.Token); !errors.Is(err, auth.ErrNoSession) {
			t.Errorf("err = %v, want ErrNoSession", err)
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		if _, err := p.Session(ctx, "nope"); !errors.Is(err, auth.ErrNoSession) {
			t.Errorf("err = %v, want ErrNoSession", err)
		}
	})
}

func TestMemorySignInPrunesExpired(t *testing.T) {
	cfg := memoryConfig(t)
	p, err := auth.New(cfg, discard())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	now := time.Now()
	auth.SetMemoryClock(p, func() time.Time { return now })

	for range 3 {
		if _, err := p.SignIn(ctx, cfg.SeedEmail, "s3cret"); err != nil {
			t.Fatalf("sign in: %v", err)
		}
	}
	if n := auth.MemorySessions(p); n != 3 {
		t.Fatalf("sessions = %d, want 3", n)
	}

	now = now.Add(cfg.SessionTTLDuration() + time.Minute)
	fresh, err := p.SignIn(ctx, cfg.SeedEmail, "s3cret")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if n := auth.MemorySessions(p); n != 1 {
		t.Errorf("sessions after prune = %d, want 1", n)
	}
	if _, err := p.Session(ctx, fresh.Token); err != nil {
		t.Errorf("fresh session: %v", err)
	}
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestHostedProvider(t *testing.T) {
	const secret = "hosted-secret"
	valid := signToken(t, secret, jwt.MapClaims{
		"sub":           "user-1",
		"email":         "ana@example.com",
		"user_metadata": map[string]string{"role": "manager"},
		"exp":           time.Now().Add(time.Hour).Unix(),
	})

	var loggedOut string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "anon" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/auth/v1/token":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["password"] != "right" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"access_token": valid, "token_type": "bearer"})
		case "/auth/v1/logout":
			loggedOut = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	cfg := &auth.Config{
		Provider:     auth.ProviderHosted,
		HostedURL:    srv.URL + "/",
		HostedAPIKey: "anon",
		JWTSecret:    secret,
	}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	p, err := auth.New(cfg, discard())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	t.Run("sign in", func(t *testing.T) {
		s, err := p.SignIn(ctx, "ana@example.com", "right")
		if err != nil {
			t.Fatalf("sign in: %v", err)
		}
		if s.UserID != "user-1" || s.Role != "manager" {
			t.Errorf("session = %+v", s)
		}
	})

	t.Run("bad credentials", func(t *testing.T) {
		_, err := p.SignIn(ctx, "ana@example.com", "wrong")
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Errorf("err = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("rejects foreign signature", func(t *testing.T) {
		forged := signToken(t, "other", jwt.MapClaims{"sub": "x", "exp": time.Now().Add(time.Hour).Unix()})
		if _, err := p.Session(ctx, forged); !errors.Is(err, auth.ErrNoSession) {
			t.Errorf("err = %v, want ErrNoSession", err)
		}
	})

	t.Run("rejects expired token", func(t *testing.T) {
		expired := signToken(t, secret, jwt.MapClaims{"sub": "x", "exp": time.Now().Add(-time.Minute).Unix()})
		if _, err := p.Session(ctx, expired); !errors.Is(err, auth.ErrNoSession) {
			t.Errorf("err = %v, want ErrNoSession", err)
		}
	})

	t.Run("default role", func(t *testing.T) {
		tok := signToken(t, secret, jwt.MapClaims{"sub": "x", "exp": time.Now().Add(time.Hour).Unix()})
		s, err := p.Session(ctx, tok)
		if err != nil {
			t.Fatalf("session: %v", err)
		}
		if s.Role != "user" {
			t.Errorf("role = %q, want user", s.Role)
		}
	})

	t.Run("sign out", func(t *testing.T) {
		if err := p.SignOut(ctx, valid); err != nil {
			t.Fatalf("sign out: %v", err)
		}
		if loggedOut != valid {
			t.Error("logout did not forward bearer token")
		}
	})
}

func TestOIDCSignInUnsupported(t *testing.T) {
	cfg := &auth.Config{
		Provider:     auth.ProviderOIDC,
		OIDCIssuer:   "https://issuer.invalid",
		OIDCClientID: "portal",
	}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	p, err := auth.New(cfg, discard())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	_, err = p.SignIn(context.Background(), "a", "b")
	if !errors.Is(err, auth.ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
	if auth.MapHTTPStatus(err) != http.StatusNotImplemented {
		t.Errorf("status = %d", auth.MapHTTPStatus(err))
	}
}
