package clickup

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/portal/pkg/handlers"
	"github.com/JaimeStill/portal/pkg/routes"
)

// Handler exposes the ClickUp proxy endpoint.
type Handler struct {
	client *Client
	logger *slog.Logger
}

// NewHandler creates a Handler over client.
func NewHandler(client *Client, logger *slog.Logger) *Handler {
	return &Handler{
		client: client,
		logger: logger.With("handler", "clickup"),
	}
}

// Routes returns the route group definition for the proxy.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/clickup-proxy",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Proxy},
			{Method: "POST", Pattern: "", Handler: h.Proxy},
		},
	}
}

// Proxy forwards the request to the endpoint query parameter and relays
// the upstream status and JSON body.
func (h *Handler) Proxy(w http.ResponseWriter, r *http.Request) {
	endpoint := r.URL.Query().Get("endpoint")

	var body []byte
	if r.Method == http.MethodPost {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			handlers.RespondErrorMessage(w, h.logger, http.StatusInternalServerError, err, Message(ErrUpstream))
			return
		}
		body = raw
	}

	resp, err := h.client.Do(r.Context(), r.Method, endpoint, body)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	w.Write(resp.Body)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMissingEndpoint), errors.Is(err, ErrInvalidEndpoint):
		handlers.RespondErrorMessage(w, h.logger, http.StatusBadRequest, err, Message(err))
	case errors.Is(err, ErrNotConfigured):
		handlers.RespondErrorMessage(w, h.logger, http.StatusServiceUnavailable, err, Message(err))
	default:
		h.logger.Error("clickup proxy failed", "error", err)
		handlers.RespondMessage(w, http.StatusInternalServerError, Message(err))
	}
}
