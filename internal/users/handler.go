package users

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/portal/internal/auth"
	"github.com/JaimeStill/portal/pkg/handlers"
	"github.com/JaimeStill/portal/pkg/pagination"
	"github.com/JaimeStill/portal/pkg/routes"
)

// Handler provides admin HTTP endpoints for user management.
type Handler struct {
	sys        System
	admin      auth.AdminPolicy
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler. Every route requires admin.
func NewHandler(
	sys System,
	admin auth.AdminPolicy,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		sys:        sys,
		admin:      admin,
		logger:     logger.With("handler", "users"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for user endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/users",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.admin.Require(h.List)},
			{Method: "POST", Pattern: "", Handler: h.admin.Require(h.Create)},
			{Method: "GET", Pattern: "/{id}", Handler: h.admin.Require(h.Find)},
			{Method: "PUT", Pattern: "/{id}", Handler: h.admin.Require(h.Update)},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.admin.Require(h.Delete)},
		},
	}
}

// List returns a paginated list of users with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single user by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	u, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondErrorMessage(w, h.logger, MapHTTPStatus(err), err, Message(err))
		return
	}

	handlers.RespondJSON(w, http.StatusOK, u)
}

// Create registers a new user.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondErrorMessage(w, h.logger, http.StatusBadRequest, ErrMissingFields, Message(ErrMissingFields))
		return
	}

	u, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondErrorMessage(w, h.logger, MapHTTPStatus(err), err, Message(err))
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, u)
}

// Update changes a user's name, role, and active flag.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var cmd UpdateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondErrorMessage(w, h.logger, http.StatusBadRequest, ErrMissingFields, Message(ErrMissingFields))
		return
	}

	u, err := h.sys.Update(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondErrorMessage(w, h.logger, MapHTTPStatus(err), err, Message(err))
		return
	}

	handlers.RespondJSON(w, http.StatusOK, u)
}

// Delete removes a user.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondErrorMessage(w, h.logger, MapHTTPStatus(err), err, Message(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return uuid.Nil, false
	}
	return id, true
}
