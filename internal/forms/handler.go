package forms

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/portal/internal/auth"
	"github.com/JaimeStill/portal/pkg/handlers"
	"github.com/JaimeStill/portal/pkg/routes"
)

// Handler provides HTTP endpoints for form access and settings.
type Handler struct {
	sys    System
	admin  auth.AdminPolicy
	logger *slog.Logger
}

// NewHandler creates a Handler. Setting management routes require admin.
func NewHandler(sys System, admin auth.AdminPolicy, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		admin:  admin,
		logger: logger.With("handler", "forms"),
	}
}

// Routes returns the route group definition for form endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/forms",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}/access", Handler: h.Access},
			{Method: "GET", Pattern: "", Handler: h.admin.Require(h.List)},
			{Method: "GET", Pattern: "/{id}", Handler: h.admin.Require(h.Find)},
			{Method: "PUT", Pattern: "/{id}", Handler: h.admin.Require(h.Upsert)},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.admin.Require(h.Delete)},
		},
	}
}

// Access returns the access decision for the caller's session.
func (h *Handler) Access(w http.ResponseWriter, r *http.Request) {
	d := h.sys.Resolve(r.Context(), r.PathValue("id"), auth.FromContext(r.Context()))
	handlers.RespondJSON(w, http.StatusOK, d)
}

// List returns all stored form settings.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.sys.List(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, items)
}

// Find returns the stored setting for a form id.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	s, err := h.sys.Find(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, s)
}

// Upsert creates or replaces the setting for a form id.
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	var cmd UpsertCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	s, err := h.sys.Upsert(r.Context(), r.PathValue("id"), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, s)
}

// Delete removes the setting for a form id.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sys.Delete(r.Context(), r.PathValue("id")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
