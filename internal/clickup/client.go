// Package clickup proxies task API calls to ClickUp with a server-held token.
package clickup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseBytes = 10 << 20

var (
	ErrMissingEndpoint = errors.New("endpoint not specified")
	ErrInvalidEndpoint = errors.New("invalid endpoint")
	ErrNotConfigured   = errors.New("clickup token not configured")
	ErrUpstream        = errors.New("clickup request failed")
)

// Message returns the client-facing text for a proxy error.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrMissingEndpoint):
		return "Endpoint não especificado"
	case errors.Is(err, ErrInvalidEndpoint):
		return "Endpoint inválido"
	case errors.Is(err, ErrNotConfigured):
		return "ClickUp não configurado"
	default:
		return "Erro ao processar a requisição"
	}
}

// Response is an upstream reply. Body is always valid JSON.
type Response struct {
	Status int
	Body   json.RawMessage
}

// Client forwards requests to the ClickUp API.
type Client struct {
	base   *url.URL
	token  string
	delay  time.Duration
	client *http.Client
	logger *slog.Logger
}

// New creates a Client. cfg must be finalized.
func New(cfg *Config, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	return &Client{
		base:   base,
		token:  cfg.Token,
		delay:  cfg.DelayDuration(),
		client: &http.Client{Timeout: cfg.TimeoutDuration()},
		logger: logger.With("system", "clickup"),
	}, nil
}

// Resolve joins endpoint onto the base URL. Endpoints that would leave the
// base URL are rejected.
func (c *Client) Resolve(endpoint string) (*url.URL, error) {
	if endpoint == "" {
		return nil, ErrMissingEndpoint
	}

	ref, err := url.Parse(strings.TrimPrefix(endpoint, "/"))
	if err != nil || ref.Scheme != "" || ref.Host != "" || ref.User != nil {
		return nil, ErrInvalidEndpoint
	}

	target := c.base.ResolveReference(ref)
	if target.Host != c.base.Host || !strings.HasPrefix(target.Path, c.base.Path) {
		return nil, ErrInvalidEndpoint
	}
	// escaped dot segments survive resolution and are decoded into Path
	for seg := range strings.SplitSeq(target.Path, "/") {
		if seg == "." || seg == ".." {
			return nil, ErrInvalidEndpoint
		}
	}
	return target, nil
}

// Do sends method to endpoint with an optional JSON body and waits the
// configured delay before returning.
func (c *Client) Do(ctx context.Context, method, endpoint string, body []byte) (*Response, error) {
	if c.token == "" {
		return nil, ErrNotConfigured
	}

	target, err := c.Resolve(endpoint)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrUpstream, err)
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%w: non-json response (status %d)", ErrUpstream, resp.StatusCode)
	}

	c.logger.Info("clickup call", "method", method, "path", target.Path, "status", resp.StatusCode)

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	return &Response{Status: resp.StatusCode, Body: raw}, nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.delay <= 0 {
		return nil
	}

	t := time.NewTimer(c.delay)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
