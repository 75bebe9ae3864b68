// Package webhooks routes form submissions to external workflow endpoints.
// A static Registry maps form-types to endpoints; the Dispatcher fans a
// payload out to every enabled endpoint and reports one Result per endpoint.
package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/portal/pkg/formatting"
	"github.com/JaimeStill/portal/pkg/lifecycle"
)

const maxResponseBytes = 1 << 20

// Result is the outcome of a single endpoint call.
type Result struct {
	Success      bool   `json:"success"`
	Status       int    `json:"status,omitempty"`
	StatusText   string `json:"statusText,omitempty"`
	URL          string `json:"url"`
	Description  string `json:"description"`
	ResponseBody any    `json:"responseBody,omitempty"`
	Error        string `json:"error,omitempty"`
	Simulated    bool   `json:"simulated,omitempty"`
}

// Dispatcher posts payloads to registry endpoints.
type Dispatcher struct {
	registry *Registry
	client   *http.Client
	simulate bool
	delay    time.Duration
	timeout  time.Duration
	limit    int
	logger   *slog.Logger

	mu     sync.Mutex
	closed bool
	tasks  sync.WaitGroup
}

// NewDispatcher creates a Dispatcher over registry. cfg must be finalized.
func NewDispatcher(registry *Registry, cfg *Config, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		client:   &http.Client{},
		simulate: cfg.Simulated(),
		delay:    cfg.SimulateDelayDuration(),
		timeout:  cfg.TimeoutDuration(),
		limit:    cfg.MaxConcurrency,
		logger:   logger.With("system", "webhooks"),
	}
}

// Registry returns the registry the dispatcher routes through.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Simulated reports whether outbound calls are replaced with fake results.
func (d *Dispatcher) Simulated() bool {
	return d.simulate
}

// Start registers a shutdown hook that drains outstanding background tasks.
func (d *Dispatcher) Start(lc *lifecycle.Coordinator) error {
	d.logger.Info("starting webhook dispatcher", "simulate", d.simulate)

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		d.logger.Info("draining webhook tasks")
		d.close()
		d.tasks.Wait()
		d.logger.Info("webhook tasks drained")
	})

	return nil
}

// Dispatch posts payload to every enabled endpoint of formType and returns one
// result per endpoint in registry order. Individual failures are reported in
// their result and never abort the others. Unknown form-types, and form-types
// without enabled endpoints, return an empty slice without any I/O.
func (d *Dispatcher) Dispatch(ctx context.Context, formType string, payload any) []Result {
	endpoints := d.registry.Enabled(formType)
	results := make([]Result, len(endpoints))
	if len(endpoints) == 0 {
		d.logger.Debug("no enabled webhooks", "form_type", formType)
		return results
	}

	body, err := json.Marshal(payload)
	if err != nil {
		for i, ep := range endpoints {
			results[i] = failure(ep, fmt.Errorf("encode payload: %w", err))
		}
		d.logger.Error("webhook payload encoding failed", "form_type", formType, "error", err)
		return results
	}

	var g errgroup.Group
	g.SetLimit(d.limit)

	for i, ep := range endpoints {
		g.Go(func() error {
			if d.simulate {
				results[i] = d.simulated(ctx, ep)
			} else {
				results[i] = d.post(ctx, ep, body)
			}
			return nil
		})
	}
	g.Wait()

	d.logSummary(formType, results)
	return results
}

// Go dispatches in the background, detached from the caller's context.
// The returned Task completes when every endpoint has been attempted.
// Once the dispatcher is draining, Go dispatches inline and returns a
// completed Task so late submissions are not lost.
func (d *Dispatcher) Go(formType string, payload any) *Task {
	t := &Task{
		FormType: formType,
		done:     make(chan struct{}),
	}
	run := func() {
		defer close(t.done)
		t.results = d.Dispatch(context.Background(), formType, payload)
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warn("dispatcher draining, dispatching inline", "form_type", formType)
		run()
		return t
	}
	d.tasks.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.tasks.Done()
		run()
	}()

	return t
}

func (d *Dispatcher) close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
}

// Wait blocks until all background tasks finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.tasks.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) simulated(ctx context.Context, ep Endpoint) Result {
	timer := time.NewTimer(d.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		return failure(ep, ctx.Err())
	}

	return Result{
		Success:     true,
		Status:      http.StatusOK,
		URL:         ep.URL,
		Description: ep.Description,
		Simulated:   true,
	}
}

func (d *Dispatcher) post(ctx context.Context, ep Endpoint, body []byte) Result {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.URL, bytes.NewReader(body))
	if err != nil {
		return failure(ep, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range ep.Headers {
		req.Header.Set(k, v)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return failure(ep, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return failure(ep, fmt.Errorf("read response: %w", err))
	}

	return Result{
		Success:      resp.StatusCode >= 200 && resp.StatusCode < 300,
		Status:       resp.StatusCode,
		StatusText:   http.StatusText(resp.StatusCode),
		URL:          ep.URL,
		Description:  ep.Description,
		ResponseBody: decodeBody(raw),
	}
}

// decodeBody returns the JSON value of raw when it parses, the raw text otherwise.
func decodeBody(raw []byte) any {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nil
	}
	if v, err := formatting.Parse[any](text); err == nil {
		return v
	}
	return string(raw)
}

func failure(ep Endpoint, err error) Result {
	return Result{
		Success:     false,
		URL:         ep.URL,
		Description: ep.Description,
		Error:       err.Error(),
	}
}

func (d *Dispatcher) logSummary(formType string, results []Result) {
	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
			continue
		}
		d.logger.Warn("webhook call failed",
			"form_type", formType,
			"url", r.URL,
			"status", r.Status,
			"error", r.Error,
		)
	}

	d.logger.Info("webhooks dispatched",
		"form_type", formType,
		"endpoints", len(results),
		"succeeded", succeeded,
		"simulated", d.simulate,
	)
}
