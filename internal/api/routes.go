package api

import (
	"net/http"

	"github.com/JaimeStill/portal/internal/admin"
	"github.com/JaimeStill/portal/internal/auth"
	"github.com/JaimeStill/portal/internal/clickup"
	"github.com/JaimeStill/portal/internal/config"
	"github.com/JaimeStill/portal/internal/migrations"
	"github.com/JaimeStill/portal/internal/promptgen"
	"github.com/JaimeStill/portal/internal/sac"
	"github.com/JaimeStill/portal/internal/webhooks"
	"github.com/JaimeStill/portal/pkg/routes"
)

func groups(domain *Domain, cfg *config.Config, runtime *Runtime) []routes.Group {
	policy := runtime.Admin
	logger := runtime.Logger

	return []routes.Group{
		auth.NewHandler(runtime.Auth, cfg.Auth.CookieName, logger).Routes(),
		promptgen.NewHandler(domain.History, runtime.Webhooks, domain.Forms, logger).Routes(),
		sac.NewHandler(runtime.Webhooks, domain.Forms, logger).Routes(),
		clickup.NewHandler(domain.ClickUp, logger).Routes(),
		domain.Forms.Handler(policy).Routes(),
		domain.History.Handler(policy).Routes(),
		domain.Users.Handler(policy).Routes(),
		domain.Settings.Handler(policy).Routes(),
		webhooks.NewHandler(runtime.Webhooks, policy, logger).Routes(),
		admin.NewHandler(
			runtime.Database.Connection(),
			cfg.Database.URL(),
			migrations.Up,
			policy,
			logger,
		).Routes(),
	}
}

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) ([]routes.Group, error) {
	all := groups(domain, cfg, runtime)
	routes.Register(mux, all...)
	return all, nil
}
