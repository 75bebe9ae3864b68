package api

import (
	"github.com/JaimeStill/portal/internal/auth"
	"github.com/JaimeStill/portal/internal/config"
	"github.com/JaimeStill/portal/internal/infrastructure"
	"github.com/JaimeStill/portal/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Admin      auth.AdminPolicy
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
			Auth:      infra.Auth,
			Webhooks:  infra.Webhooks,
		},
		Pagination: cfg.API.Pagination,
		Admin:      cfg.Auth.Policy(),
	}
}
