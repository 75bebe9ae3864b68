package settings

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/portal/internal/auth"
	"github.com/JaimeStill/portal/pkg/handlers"
	"github.com/JaimeStill/portal/pkg/routes"
)

const updatedMessage = "Configurações do sistema atualizadas com sucesso!"

// Handler provides admin HTTP endpoints for system settings.
type Handler struct {
	sys    System
	admin  auth.AdminPolicy
	logger *slog.Logger
}

// NewHandler creates a Handler. Every route requires admin.
func NewHandler(sys System, admin auth.AdminPolicy, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		admin:  admin,
		logger: logger.With("handler", "settings"),
	}
}

// Routes returns the route group definition for settings endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/admin/system-settings",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.admin.Require(h.Get)},
			{Method: "POST", Pattern: "", Handler: h.admin.Require(h.Update)},
			{Method: "PUT", Pattern: "", Handler: h.admin.Require(h.Update)},
			{Method: "GET", Pattern: "/raw", Handler: h.admin.Require(h.List)},
		},
	}
}

// Get returns all settings with decoded values.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	values, err := h.sys.Values(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, Response{Settings: values})
}

// List returns the stored rows with descriptions and text values.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.sys.List(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, items)
}

// Update writes the known keys of the request body.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var values Values
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidValue)
		return
	}

	updated, err := h.sys.Update(r.Context(), values)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, UpdateResponse{
		Success:  true,
		Message:  updatedMessage,
		Settings: updated,
	})
}
