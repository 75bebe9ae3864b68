package webhooks_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/portal/internal/webhooks"
	"github.com/JaimeStill/portal/pkg/lifecycle"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newDispatcher(t *testing.T, simulate bool, endpoints map[string][]webhooks.EndpointConfig) *webhooks.Dispatcher {
	t.Helper()
	cfg := &webhooks.Config{
		Simulate:      &simulate,
		SimulateDelay: "10ms",
		Timeout:       "2s",
		Endpoints:     endpoints,
	}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return webhooks.NewDispatcher(webhooks.NewRegistry(cfg.Endpoints), cfg, discard())
}

func TestDispatchUnknownFormType(t *testing.T) {
	d := newDispatcher(t, false, nil)

	for _, formType := range []string{"", "nope"} {
		results := d.Dispatch(context.Background(), formType, map[string]string{"a": "b"})
		if results == nil || len(results) != 0 {
			t.Errorf("Dispatch(%q) = %v, want empty non-nil", formType, results)
		}
	}
}

func TestDispatchAllDisabledNoIO(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	d := newDispatcher(t, false, map[string][]webhooks.EndpointConfig{
		"lead": {{URL: srv.URL, Enabled: false}},
	})

	if results := d.Dispatch(context.Background(), "lead", nil); len(results) != 0 {
		t.Errorf("results = %v, want empty", results)
	}
	if hits.Load() != 0 {
		t.Errorf("hits = %d, want 0", hits.Load())
	}
}

func TestDispatchPostsEnabledEndpoints(t *testing.T) {
	var gotAuth, gotType string
	var gotBody map[string]any
	jsonSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"received":true}`))
	}))
	defer jsonSrv.Close()

	textSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer textSrv.Close()

	d := newDispatcher(t, false, map[string][]webhooks.EndpointConfig{
		"lead": {
			{URL: jsonSrv.URL, Enabled: true, Description: "first", Headers: map[string]string{"Authorization": "Bearer k"}},
			{URL: "http://disabled.invalid", Enabled: false, Description: "skipped"},
			{URL: textSrv.URL, Enabled: true, Description: "second"},
		},
	})

	results := d.Dispatch(context.Background(), "lead", map[string]string{"nome": "Ana"})
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}

	first, second := results[0], results[1]
	if first.Description != "first" || second.Description != "second" {
		t.Fatalf("order = %q, %q", first.Description, second.Description)
	}

	if !first.Success || first.Status != 200 {
		t.Errorf("first = %+v", first)
	}
	if body, ok := first.ResponseBody.(map[string]any); !ok || body["received"] != true {
		t.Errorf("first body = %#v", first.ResponseBody)
	}
	if gotAuth != "Bearer k" || gotType != "application/json" {
		t.Errorf("headers = %q, %q", gotAuth, gotType)
	}
	if gotBody["nome"] != "Ana" {
		t.Errorf("payload = %v", gotBody)
	}

	if second.Success || second.Status != http.StatusBadGateway || second.StatusText != "Bad Gateway" {
		t.Errorf("second = %+v", second)
	}
	if second.ResponseBody != "upstream down" {
		t.Errorf("second body = %#v", second.ResponseBody)
	}
}

func TestDispatchNetworkFailureIsolated(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer ok.Close()

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	d := newDispatcher(t, false, map[string][]webhooks.EndpointConfig{
		"lead": {
			{URL: deadURL, Enabled: true},
			{URL: ok.URL, Enabled: true},
		},
	})

	results := d.Dispatch(context.Background(), "lead", map[string]int{"n": 1})
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].Success || results[0].Error == "" || results[0].Status != 0 {
		t.Errorf("dead endpoint = %+v", results[0])
	}
	if !results[1].Success {
		t.Errorf("healthy endpoint = %+v", results[1])
	}
}

func TestDispatchEncodingFailure(t *testing.T) {
	d := newDispatcher(t, false, map[string][]webhooks.EndpointConfig{
		"lead": {{URL: "http://unused.invalid", Enabled: true}},
	})

	results := d.Dispatch(context.Background(), "lead", map[string]any{"bad": make(chan int)})
	if len(results) != 1 || results[0].Success || results[0].Error == "" {
		t.Errorf("results = %+v", results)
	}
}

func TestDispatchSimulated(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	d := newDispatcher(t, true, map[string][]webhooks.EndpointConfig{
		"lead": {{URL: srv.URL, Enabled: true, Description: "sim"}},
	})

	start := time.Now()
	results := d.Dispatch(context.Background(), "lead", nil)

	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	r := results[0]
	if !r.Success || !r.Simulated || r.Status != 200 || r.URL != srv.URL {
		t.Errorf("result = %+v", r)
	}
	if hits.Load() != 0 {
		t.Error("simulated dispatch performed network I/O")
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Error("simulated dispatch skipped the delay")
	}
}

func TestDispatchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	simulate := false
	cfg := &webhooks.Config{
		Simulate:  &simulate,
		Timeout:   "50ms",
		Endpoints: map[string][]webhooks.EndpointConfig{"lead": {{URL: srv.URL, Enabled: true}}},
	}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	d := webhooks.NewDispatcher(webhooks.NewRegistry(cfg.Endpoints), cfg, discard())

	results := d.Dispatch(context.Background(), "lead", nil)
	if len(results) != 1 || results[0].Success || results[0].Error == "" {
		t.Errorf("results = %+v", results)
	}
}

func TestGoCompletesAndDrains(t *testing.T) {
	d := newDispatcher(t, true, map[string][]webhooks.EndpointConfig{
		"lead": {{URL: "http://sim.invalid", Enabled: true}},
	})

	lc := lifecycle.New()
	if err := d.Start(lc); err != nil {
		t.Fatalf("start: %v", err)
	}

	task := d.Go("lead", map[string]string{"k": "v"})
	if task.FormType != "lead" {
		t.Errorf("form type = %q", task.FormType)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	results, err := task.Wait(ctx)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if len(results) != 1 || !results[0].Simulated {
		t.Errorf("results = %+v", results)
	}

	select {
	case <-task.Done():
	default:
		t.Error("Done not closed after Wait returned")
	}
	if task.Results() == nil {
		t.Error("Results nil after completion")
	}

	if err := lc.Shutdown(time.Second); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestWaitDrainsTasks(t *testing.T) {
	d := newDispatcher(t, true, map[string][]webhooks.EndpointConfig{
		"lead": {{URL: "http://sim.invalid", Enabled: true}},
	})

	tasks := []*webhooks.Task{d.Go("lead", nil), d.Go("lead", nil), d.Go("none", nil)}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}

	for i, task := range tasks {
		if task.Results() == nil {
			t.Errorf("task %d not complete after drain", i)
		}
	}
}

func TestGoAfterShutdownStarted(t *testing.T) {
	simulate := true
	cfg := &webhooks.Config{
		Simulate:      &simulate,
		SimulateDelay: "300ms",
		Endpoints: map[string][]webhooks.EndpointConfig{
			"lead": {{URL: "http://sim.invalid", Enabled: true}},
		},
	}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	d := webhooks.NewDispatcher(webhooks.NewRegistry(cfg.Endpoints), cfg, discard())

	lc := lifecycle.New()
	if err := d.Start(lc); err != nil {
		t.Fatalf("start: %v", err)
	}

	tasks := make(chan *webhooks.Task, 1)
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		time.Sleep(50 * time.Millisecond)
		tasks <- d.Go("lead", map[string]string{"k": "v"})
	})

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	task := <-tasks
	results := task.Results()
	if len(results) != 1 || !results[0].Success {
		t.Errorf("results after shutdown = %+v, want one completed result", results)
	}
}
