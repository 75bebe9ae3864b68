package webhooks

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/JaimeStill/portal/internal/auth"
	"github.com/JaimeStill/portal/pkg/handlers"
	"github.com/JaimeStill/portal/pkg/routes"
)

// ErrUnknownFormType is returned when a test dispatch names an unregistered form-type.
var ErrUnknownFormType = errors.New("unknown form type")

// RegistryView is the admin listing of the webhook registry.
type RegistryView struct {
	Simulated bool                  `json:"simulated"`
	Endpoints map[string][]Endpoint `json:"endpoints"`
}

// TestResponse reports a synchronous test dispatch.
type TestResponse struct {
	FormType string   `json:"formType"`
	Results  []Result `json:"results"`
}

// Handler provides admin HTTP endpoints for the webhook registry.
type Handler struct {
	dispatcher *Dispatcher
	admin      auth.AdminPolicy
	logger     *slog.Logger
}

// NewHandler creates a Handler. Every route requires admin.
func NewHandler(d *Dispatcher, admin auth.AdminPolicy, logger *slog.Logger) *Handler {
	return &Handler{
		dispatcher: d,
		admin:      admin,
		logger:     logger.With("handler", "webhooks"),
	}
}

// Routes returns the route group definition for webhook endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/webhooks",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.admin.Require(h.List)},
			{Method: "POST", Pattern: "/{formType}/test", Handler: h.admin.Require(h.Test)},
		},
	}
}

// List returns the registry and the current dispatch mode.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, RegistryView{
		Simulated: h.dispatcher.Simulated(),
		Endpoints: h.dispatcher.Registry().All(),
	})
}

// Test dispatches the request body, or a marker payload when empty, and waits for the results.
func (h *Handler) Test(w http.ResponseWriter, r *http.Request) {
	formType := r.PathValue("formType")
	if h.dispatcher.Registry().Endpoints(formType) == nil {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrUnknownFormType)
		return
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var payload any = map[string]any{
		"test":      true,
		"formType":  formType,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if len(raw) > 0 {
		var body any
		if err := json.Unmarshal(raw, &body); err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
		payload = body
	}

	results := h.dispatcher.Dispatch(r.Context(), formType, payload)
	handlers.RespondJSON(w, http.StatusOK, TestResponse{FormType: formType, Results: results})
}
