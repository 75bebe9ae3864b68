// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, storage, authentication,
// webhook dispatch) that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/portal/internal/auth"
	"github.com/JaimeStill/portal/internal/config"
	"github.com/JaimeStill/portal/internal/webhooks"
	"github.com/JaimeStill/portal/pkg/database"
	"github.com/JaimeStill/portal/pkg/lifecycle"
	"github.com/JaimeStill/portal/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, database access, file storage, the credential provider, and
// the webhook dispatcher.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Auth      auth.Provider
	Webhooks  *webhooks.Dispatcher
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	provider, err := auth.New(&cfg.Auth, logger)
	if err != nil {
		return nil, fmt.Errorf("auth init failed: %w", err)
	}

	dispatcher := webhooks.NewDispatcher(
		webhooks.NewRegistry(cfg.Webhooks.Endpoints),
		&cfg.Webhooks,
		logger,
	)

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Auth:      provider,
		Webhooks:  dispatcher,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// Database and storage hooks are registered for startup and shutdown coordination;
// the dispatcher drains background deliveries on shutdown.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	if err := i.Webhooks.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("webhooks start failed: %w", err)
	}
	i.Logger.Info("auth provider selected", "provider", i.Auth.Name())
	return nil
}
