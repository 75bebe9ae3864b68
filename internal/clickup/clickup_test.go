package clickup_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/portal/internal/clickup"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newClient(t *testing.T, baseURL, token string) *clickup.Client {
	t.Helper()
	cfg := &clickup.Config{BaseURL: baseURL, Token: token, Delay: "0s"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	c, err := clickup.New(cfg, discard())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return c
}

func setupMux(c *clickup.Client) *http.ServeMux {
	mux := http.NewServeMux()
	group := clickup.NewHandler(c, discard()).Routes()
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
	}
	return mux
}

func TestConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := &clickup.Config{}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if cfg.BaseURL != "https://api.clickup.com/api/v2/" {
			t.Errorf("base url = %q", cfg.BaseURL)
		}
		if cfg.DelayDuration().Milliseconds() != 500 {
			t.Errorf("delay = %s", cfg.DelayDuration())
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("TEST_CLICKUP_TOKEN", "pk_env")
		t.Setenv("TEST_CLICKUP_BASE_URL", "http://clickup.local/api")

		cfg := &clickup.Config{Token: "pk_file"}
		err := cfg.Finalize(&clickup.Env{Token: "TEST_CLICKUP_TOKEN", BaseURL: "TEST_CLICKUP_BASE_URL"})
		if err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if cfg.Token != "pk_env" {
			t.Errorf("token = %q", cfg.Token)
		}
		if cfg.BaseURL != "http://clickup.local/api/" {
			t.Errorf("base url = %q", cfg.BaseURL)
		}
	})

	t.Run("invalid base url", func(t *testing.T) {
		cfg := &clickup.Config{BaseURL: "not a url"}
		if err := cfg.Finalize(nil); err == nil {
			t.Error("expected error")
		}
	})
}

func TestResolve(t *testing.T) {
	c := newClient(t, "https://api.clickup.com/api/v2/", "pk")

	tests := []struct {
		endpoint string
		want     string
		wantErr  error
	}{
		{"list/901/task", "https://api.clickup.com/api/v2/list/901/task", nil},
		{"/task/abc?include_subtasks=true", "https://api.clickup.com/api/v2/task/abc?include_subtasks=true", nil},
		{"", "", clickup.ErrMissingEndpoint},
		{"https://evil.example.com/steal", "", clickup.ErrInvalidEndpoint},
		{"//evil.example.com/steal", "", clickup.ErrInvalidEndpoint},
		{"../../v1/team", "", clickup.ErrInvalidEndpoint},
		{"%2e%2e/%2e%2e/x", "", clickup.ErrInvalidEndpoint},
		{"..%2f..%2fx", "", clickup.ErrInvalidEndpoint},
		{"list/%2E%2E/team", "", clickup.ErrInvalidEndpoint},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			got, err := c.Resolve(tt.endpoint)
			if err != tt.wantErr {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err == nil && got.String() != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProxyGet(t *testing.T) {
	var gotAuth, gotPath string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tasks":[{"id":"abc"}]}`))
	}))
	defer upstream.Close()

	mux := setupMux(newClient(t, upstream.URL+"/api/v2/", "pk_test"))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/clickup-proxy?endpoint=list/901/task", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotAuth != "pk_test" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if gotPath != "/api/v2/list/901/task" {
		t.Errorf("path = %q", gotPath)
	}
	if rec.Body.String() != `{"tasks":[{"id":"abc"}]}` {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestProxyPostRelaysStatus(t *testing.T) {
	var gotBody map[string]any
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"err":"Task name invalid","ECODE":"INPUT_005"}`))
	}))
	defer upstream.Close()

	mux := setupMux(newClient(t, upstream.URL, "pk_test"))

	rec := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"name":"Reagendamento"}`)
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/clickup-proxy?endpoint=list/901/task", body))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if gotBody["name"] != "Reagendamento" {
		t.Errorf("forwarded body = %v", gotBody)
	}

	var resp map[string]string
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp["ECODE"] != "INPUT_005" {
		t.Errorf("body = %v", resp)
	}
}

func TestProxyErrors(t *testing.T) {
	htmlUpstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer htmlUpstream.Close()

	tests := []struct {
		name       string
		client     *clickup.Client
		target     string
		wantStatus int
		wantErr    string
	}{
		{
			name:       "missing endpoint",
			client:     newClient(t, htmlUpstream.URL, "pk"),
			target:     "/clickup-proxy",
			wantStatus: http.StatusBadRequest,
			wantErr:    "Endpoint não especificado",
		},
		{
			name:       "escaped dot segments",
			client:     newClient(t, htmlUpstream.URL, "pk"),
			target:     "/clickup-proxy?endpoint=%252e%252e/%252e%252e/x",
			wantStatus: http.StatusBadRequest,
			wantErr:    "Endpoint inválido",
		},
		{
			name:       "no token",
			client:     newClient(t, htmlUpstream.URL, ""),
			target:     "/clickup-proxy?endpoint=team",
			wantStatus: http.StatusServiceUnavailable,
			wantErr:    "ClickUp não configurado",
		},
		{
			name:       "non json upstream",
			client:     newClient(t, htmlUpstream.URL, "pk"),
			target:     "/clickup-proxy?endpoint=team",
			wantStatus: http.StatusInternalServerError,
			wantErr:    "Erro ao processar a requisição",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			setupMux(tt.client).ServeHTTP(rec, httptest.NewRequest("GET", tt.target, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body map[string]string
			json.NewDecoder(rec.Body).Decode(&body)
			if body["error"] != tt.wantErr {
				t.Errorf("error = %q, want %q", body["error"], tt.wantErr)
			}
		})
	}
}

func TestErrorStrings(t *testing.T) {
	for _, err := range []error{
		clickup.ErrMissingEndpoint,
		clickup.ErrInvalidEndpoint,
		clickup.ErrNotConfigured,
		clickup.ErrUpstream,
	} {
		msg := err.Error()
		if strings.ToLower(msg[:1]) != msg[:1] {
			t.Errorf("error %q starts with a capital letter", msg)
		}
		if clickup.Message(err) == msg {
			t.Errorf("Message(%q) returned the error text", msg)
		}
	}
}
