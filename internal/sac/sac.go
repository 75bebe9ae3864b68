// Package sac forwards customer-service tickets to the sac webhook endpoints.
package sac

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/portal/internal/webhooks"
	"github.com/JaimeStill/portal/pkg/handlers"
	"github.com/JaimeStill/portal/pkg/routes"
)

// FormID is the form-type and form settings id of the ticket form.
const FormID = webhooks.FormTypeSAC

// ErrProcessing is logged when a ticket cannot be delivered.
var ErrProcessing = errors.New("ticket could not be processed")

const (
	msgProcessing = "Erro ao processar a requisição"
	msgUpstream   = "Erro ao processar webhook"
)

// Dispatcher delivers a payload synchronously.
type Dispatcher interface {
	Dispatch(ctx context.Context, formType string, payload any) []webhooks.Result
}

// Gatekeeper applies a form's access decision to a handler.
type Gatekeeper interface {
	Gate(formID string, next http.HandlerFunc) http.HandlerFunc
}

// Response is the body of a delivered ticket.
type Response struct {
	Success   bool `json:"success"`
	Simulated bool `json:"simulated,omitempty"`
}

// UpstreamError is the body returned when an endpoint rejects the ticket.
type UpstreamError struct {
	Error      string `json:"error"`
	Status     int    `json:"status"`
	StatusText string `json:"statusText"`
}

// Handler serves the ticket endpoint.
type Handler struct {
	dispatcher Dispatcher
	gate       Gatekeeper
	logger     *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(d Dispatcher, gate Gatekeeper, logger *slog.Logger) *Handler {
	return &Handler{
		dispatcher: d,
		gate:       gate,
		logger:     logger.With("handler", "sac"),
	}
}

// Routes returns the route group definition for the ticket endpoint.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/sac-webhook",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.gate.Gate(FormID, h.Submit)},
		},
	}
}

// Submit forwards the request body unchanged and waits for every endpoint.
// The first failed endpoint determines the error response.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		handlers.RespondErrorMessage(w, h.logger, http.StatusInternalServerError, err, msgProcessing)
		return
	}
	if !json.Valid(raw) {
		handlers.RespondErrorMessage(w, h.logger, http.StatusBadRequest, ErrProcessing, msgProcessing)
		return
	}

	results := h.dispatcher.Dispatch(r.Context(), FormID, json.RawMessage(raw))
	if len(results) == 0 {
		h.logger.Error("no sac endpoint enabled")
		handlers.RespondErrorMessage(w, h.logger, http.StatusInternalServerError, ErrProcessing, msgProcessing)
		return
	}

	simulated := true
	for _, res := range results {
		if res.Success {
			simulated = simulated && res.Simulated
			continue
		}
		if res.Status != 0 {
			h.logger.Error("sac endpoint rejected ticket", "url", res.URL, "status", res.Status)
			handlers.RespondJSON(w, http.StatusInternalServerError, UpstreamError{
				Error:      msgUpstream,
				Status:     res.Status,
				StatusText: res.StatusText,
			})
			return
		}
		h.logger.Error("sac endpoint unreachable", "url", res.URL, "error", res.Error)
		handlers.RespondErrorMessage(w, h.logger, http.StatusInternalServerError, ErrProcessing, msgProcessing)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, Response{Success: true, Simulated: simulated})
}
