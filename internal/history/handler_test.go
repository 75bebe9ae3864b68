package history_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/portal/internal/auth"
	"github.com/JaimeStill/portal/internal/history"
	"github.com/JaimeStill/portal/pkg/lifecycle"
	"github.com/JaimeStill/portal/pkg/pagination"
	"github.com/JaimeStill/portal/pkg/storage"
)

type mockSystem struct {
	recordFn   func(ctx context.Context, cmd history.RecordCommand) (*history.Entry, error)
	listFn     func(ctx context.Context, page pagination.PageRequest, filters history.Filters) (*pagination.PageResult[history.Entry], error)
	findFn     func(ctx context.Context, id uuid.UUID) (*history.Entry, error)
	deleteFn   func(ctx context.Context, id uuid.UUID) error
	downloadFn func(ctx context.Context, id uuid.UUID) (*storage.Blob, error)
}

func (m *mockSystem) Handler(admin auth.AdminPolicy) *history.Handler {
	return history.NewHandler(m, admin, discard(), pagination.Config{DefaultPageSize: 20, MaxPageSize: 100})
}

func (m *mockSystem) Record(ctx context.Context, cmd history.RecordCommand) (*history.Entry, error) {
	return m.recordFn(ctx, cmd)
}

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters history.Filters) (*pagination.PageResult[history.Entry], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*history.Entry, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) Delete(ctx context.Context, id uuid.UUID) error { return m.deleteFn(ctx, id) }

func (m *mockSystem) Download(ctx context.Context, id uuid.UUID) (*storage.Blob, error) {
	return m.downloadFn(ctx, id)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupMux(h *history.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
	}
	return mux
}

var (
	admin   = auth.AdminPolicy{SuperAdmins: []string{"root@example.com"}}
	owner   = &auth.Session{UserID: "user-1", Email: "ana@example.com"}
	other   = &auth.Session{UserID: "user-2", Email: "bia@example.com"}
	rootSes = &auth.Session{UserID: "root", Email: "root@example.com"}
	entryID = uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")
)

func withSession(req *http.Request, s *auth.Session) *http.Request {
	return req.WithContext(auth.WithSession(req.Context(), s))
}

func sampleEntry() *history.Entry {
	userID := "user-1"
	key := history.ArchiveKey("outros", entryID)
	return &history.Entry{
		ID:         entryID,
		UserID:     &userID,
		Prompt:     "# INSTRUÇÕES",
		FormType:   "outros",
		FormData:   map[string]any{},
		StorageKey: &key,
	}
}

func TestHandlerListScopesNonAdmins(t *testing.T) {
	var got history.Filters
	sys := &mockSystem{
		listFn: func(_ context.Context, page pagination.PageRequest, f history.Filters) (*pagination.PageResult[history.Entry], error) {
			got = f
			result := pagination.NewPageResult([]history.Entry{}, 0, page.Page, page.PageSize)
			return &result, nil
		},
	}
	mux := setupMux(sys.Handler(admin))

	t.Run("anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/history", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("user filter forced", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, withSession(httptest.NewRequest("GET", "/history?user_id=user-2", nil), owner))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got.UserID == nil || *got.UserID != "user-1" {
			t.Errorf("user filter = %v, want user-1", got.UserID)
		}
	})

	t.Run("admin sees requested filter", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, withSession(httptest.NewRequest("GET", "/history?user_id=user-2&form_type=outros", nil), rootSes))
		if got.UserID == nil || *got.UserID != "user-2" {
			t.Errorf("user filter = %v, want user-2", got.UserID)
		}
		if got.FormType == nil || *got.FormType != "outros" {
			t.Errorf("form type filter = %v", got.FormType)
		}
	})
}

func TestHandlerOwnership(t *testing.T) {
	deleted := false
	sys := &mockSystem{
		findFn: func(_ context.Context, id uuid.UUID) (*history.Entry, error) {
			if id != entryID {
				return nil, history.ErrNotFound
			}
			return sampleEntry(), nil
		},
		deleteFn: func(context.Context, uuid.UUID) error {
			deleted = true
			return nil
		},
	}
	mux := setupMux(sys.Handler(admin))
	path := "/history/" + entryID.String()

	t.Run("owner finds entry", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, withSession(httptest.NewRequest("GET", path, nil), owner))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var e history.Entry
		json.NewDecoder(rec.Body).Decode(&e)
		if e.ID != entryID {
			t.Errorf("id = %s", e.ID)
		}
	})

	t.Run("other user gets not found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, withSession(httptest.NewRequest("GET", path, nil), other))
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("other user cannot delete", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, withSession(httptest.NewRequest("DELETE", path, nil), other))
		if rec.Code != http.StatusNotFound || deleted {
			t.Errorf("status = %d, deleted = %v", rec.Code, deleted)
		}
	})

	t.Run("admin deletes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, withSession(httptest.NewRequest("DELETE", path, nil), rootSes))
		if rec.Code != http.StatusNoContent || !deleted {
			t.Errorf("status = %d, deleted = %v", rec.Code, deleted)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, withSession(httptest.NewRequest("GET", "/history/not-a-uuid", nil), owner))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandlerDownload(t *testing.T) {
	sys := &mockSystem{
		findFn: func(context.Context, uuid.UUID) (*history.Entry, error) { return sampleEntry(), nil },
		downloadFn: func(context.Context, uuid.UUID) (*storage.Blob, error) {
			return &storage.Blob{
				Body:          io.NopCloser(strings.NewReader("# INSTRUÇÕES")),
				ContentType:   "text/markdown; charset=utf-8",
				ContentLength: int64(len("# INSTRUÇÕES")),
			}, nil
		},
	}
	mux := setupMux(sys.Handler(admin))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, withSession(httptest.NewRequest("GET", "/history/"+entryID.String()+"/download", nil), owner))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/markdown; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "prompt-outros-") {
		t.Errorf("disposition = %q", cd)
	}
	if rec.Body.String() != "# INSTRUÇÕES" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestArchiveKey(t *testing.T) {
	tests := []struct {
		formType string
		want     string
	}{
		{"energia-solar", "prompts/energia-solar/" + entryID.String() + ".md"},
		{"", "prompts/unknown/" + entryID.String() + ".md"},
		{"../../secrets", "prompts/unknown/" + entryID.String() + ".md"},
		{"outros/extra", "prompts/unknown/" + entryID.String() + ".md"},
		{"..", "prompts/unknown/" + entryID.String() + ".md"},
	}

	for _, tt := range tests {
		if got := history.ArchiveKey(tt.formType, entryID); got != tt.want {
			t.Errorf("ArchiveKey(%q) = %q, want %q", tt.formType, got, tt.want)
		}
	}
}

type recordingStore struct {
	uploads int
}

func (s *recordingStore) Start(*lifecycle.Coordinator) error { return nil }

func (s *recordingStore) Upload(context.Context, string, io.Reader, string) error {
	s.uploads++
	return nil
}

func (s *recordingStore) Download(context.Context, string) (*storage.Blob, error) {
	return nil, storage.ErrNotFound
}

func (s *recordingStore) Delete(context.Context, string) error { return nil }

func TestRecordInvalidFormDataSkipsUpload(t *testing.T) {
	store := &recordingStore{}
	sys := history.New(nil, store, discard(), pagination.Config{DefaultPageSize: 20, MaxPageSize: 100})

	_, err := sys.Record(context.Background(), history.RecordCommand{
		Prompt:   "# INSTRUÇÕES",
		FormType: "outros",
		FormData: map[string]any{"bad": make(chan int)},
	})
	if err == nil {
		t.Fatal("expected marshal error")
	}
	if store.uploads != 0 {
		t.Errorf("uploads = %d, want 0", store.uploads)
	}
}
