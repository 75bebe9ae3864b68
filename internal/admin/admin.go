// Package admin exposes database maintenance endpoints for super admins.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/JaimeStill/portal/internal/auth"
	"github.com/JaimeStill/portal/internal/migrations"
	"github.com/JaimeStill/portal/pkg/handlers"
	"github.com/JaimeStill/portal/pkg/routes"
)

const pingTimeout = 5 * time.Second

// Migrator applies the embedded schema to the database at url.
type Migrator func(url string) (migrations.Status, error)

// Pinger verifies database connectivity.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Result reports a maintenance action.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// InitResult reports the schema state after initialization.
type InitResult struct {
	Result
	migrations.Status
	Migrations int `json:"migrations"`
}

// Handler serves the admin maintenance endpoints.
type Handler struct {
	db      Pinger
	url     string
	migrate Migrator
	admin   auth.AdminPolicy
	logger  *slog.Logger
}

// NewHandler creates a Handler. Every route requires admin.
func NewHandler(db Pinger, url string, migrate Migrator, admin auth.AdminPolicy, logger *slog.Logger) *Handler {
	return &Handler{
		db:      db,
		url:     url,
		migrate: migrate,
		admin:   admin,
		logger:  logger.With("handler", "admin"),
	}
}

// Routes returns the route group definition for admin endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/admin",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/initialize-database", Handler: h.admin.Require(h.InitializeDatabase)},
			{Method: "POST", Pattern: "/test-connection", Handler: h.admin.Require(h.TestConnection)},
		},
	}
}

// InitializeDatabase applies pending schema migrations.
func (h *Handler) InitializeDatabase(w http.ResponseWriter, r *http.Request) {
	status, err := h.migrate(h.url)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError,
			fmt.Errorf("Falha ao inicializar banco: %w", err))
		return
	}

	h.logger.Info("database initialized", "version", status.Version, "dirty", status.Dirty)
	handlers.RespondJSON(w, http.StatusOK, InitResult{
		Result: Result{
			Success: true,
			Message: "Banco de dados inicializado com sucesso",
		},
		Status:     status,
		Migrations: migrations.Count(),
	})
}

// TestConnection pings the database.
func (h *Handler) TestConnection(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError,
			fmt.Errorf("Falha ao conectar: %w", err))
		return
	}

	handlers.RespondJSON(w, http.StatusOK, Result{
		Success: true,
		Message: "Conexão estabelecida com sucesso",
	})
}
