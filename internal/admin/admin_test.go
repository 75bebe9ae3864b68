package admin_test

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

	"github.com/JaimeStill/portal/internal/admin"
	"github.com/JaimeStill/portal/internal/auth"
	"github.com/JaimeStill/portal/internal/migrations"
)

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func serve(h *admin.Handler, path string, s *auth.Session) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
	}

	req := httptest.NewRequest("POST", path, nil)
	if s != nil {
		req = req.WithContext(auth.WithSession(req.Context(), s))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

var (
	policy = auth.AdminPolicy{SuperAdmins: []string{"admin@carbonecompany.com"}}
	root   = &auth.Session{Email: "Admin@CarboneCompany.com"}
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

func TestInitializeDatabase(t *testing.T) {
	var gotURL string
	migrate := func(url string) (migrations.Status, error) {
		gotURL = url
		return migrations.Status{Version: 4}, nil
	}
	h := admin.NewHandler(pinger{}, "postgres://db/portal", migrate, policy, logger)

	rec := serve(h, "/admin/initialize-database", root)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotURL != "postgres://db/portal" {
		t.Errorf("url = %q", gotURL)
	}

	var body map[string]any
	json.NewDecoder(rec.Body).Decode(&body)
	if body["success"] != true || body["version"] != float64(4) || body["migrations"] != float64(4) {
		t.Errorf("body = %v", body)
	}
}

func TestInitializeDatabaseFailure(t *testing.T) {
	migrate := func(string) (migrations.Status, error) {
		return migrations.Status{}, errors.New("dirty database version 3")
	}
	h := admin.NewHandler(pinger{}, "", migrate, policy, logger)

	rec := serve(h, "/admin/initialize-database", root)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var body map[string]string
	json.NewDecoder(rec.Body).Decode(&body)
	if !strings.HasPrefix(body["error"], "Falha ao inicializar banco:") {
		t.Errorf("error = %q", body["error"])
	}
}

func TestTestConnection(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"reachable", nil, http.StatusOK},
		{"unreachable", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := admin.NewHandler(pinger{err: tt.err}, "", nil, policy, logger)
			if rec := serve(h, "/admin/test-connection", root); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestAdminGate(t *testing.T) {
	called := false
	migrate := func(string) (migrations.Status, error) {
		called = true
		return migrations.Status{}, nil
	}
	h := admin.NewHandler(pinger{}, "", migrate, policy, logger)

	if rec := serve(h, "/admin/initialize-database", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", rec.Code)
	}

	rec := serve(h, "/admin/initialize-database", &auth.Session{Email: "ana@example.com"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-admin status = %d, want 403", rec.Code)
	}

	var body map[string]string
	json.NewDecoder(rec.Body).Decode(&body)
	if body["error"] != "Permissão negada. Apenas super administradores podem acessar esta API." {
		t.Errorf("error = %q", body["error"])
	}
	if called {
		t.Error("migrations ran for a non-admin")
	}
}
