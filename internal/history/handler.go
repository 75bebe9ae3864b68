package history

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/portal/internal/auth"
	"github.com/JaimeStill/portal/pkg/handlers"
	"github.com/JaimeStill/portal/pkg/pagination"
	"github.com/JaimeStill/portal/pkg/routes"
)

// Handler provides HTTP endpoints for prompt history.
// Admins see every entry; other users only their own.
type Handler struct {
	sys        System
	admin      auth.AdminPolicy
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, admin policy, logger, and pagination config.
func NewHandler(
	sys System,
	admin auth.AdminPolicy,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		sys:        sys,
		admin:      admin,
		logger:     logger.With("handler", "history"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for history endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/history",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: auth.RequireSession(h.List)},
			{Method: "POST", Pattern: "/search", Handler: auth.RequireSession(h.Search)},
			{Method: "GET", Pattern: "/{id}", Handler: auth.RequireSession(h.Find)},
			{Method: "GET", Pattern: "/{id}/download", Handler: auth.RequireSession(h.Download)},
			{Method: "DELETE", Pattern: "/{id}", Handler: auth.RequireSession(h.Delete)},
		},
	}
}

// List returns a paginated list of history entries with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := h.scope(r, FiltersFromQuery(r.URL.Query()))

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Search accepts a JSON body with pagination and filter criteria.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, h.scope(r, req.Filters))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single history entry by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	e, ok := h.owned(w, r)
	if !ok {
		return
	}
	handlers.RespondJSON(w, http.StatusOK, e)
}

// Download streams the archived prompt document as a markdown attachment.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	e, ok := h.owned(w, r)
	if !ok {
		return
	}

	blob, err := h.sys.Download(r.Context(), e.ID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer blob.Body.Close()

	w.Header().Set("Content-Type", blob.ContentType)
	if blob.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(blob.ContentLength, 10))
	}
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("prompt-%s-%s.md", e.FormType, e.ID)),
	)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, blob.Body)
}

// Delete removes a history entry and its archived document.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	e, ok := h.owned(w, r)
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), e.ID); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// scope restricts non-admin callers to their own entries.
func (h *Handler) scope(r *http.Request, f Filters) Filters {
	s := auth.FromContext(r.Context())
	if h.admin.IsAdmin(s) {
		return f
	}
	userID := s.UserID
	f.UserID = &userID
	return f
}

// owned loads the entry named by the id path parameter and verifies the caller
// may see it. Entries owned by someone else are reported as not found.
func (h *Handler) owned(w http.ResponseWriter, r *http.Request) (*Entry, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return nil, false
	}

	e, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return nil, false
	}

	s := auth.FromContext(r.Context())
	if !h.admin.IsAdmin(s) && (e.UserID == nil || *e.UserID != s.UserID) {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrNotFound)
		return nil, false
	}

	return e, true
}
