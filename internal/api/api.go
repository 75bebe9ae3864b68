// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/portal/internal/auth"
	"github.com/JaimeStill/portal/internal/config"
	"github.com/JaimeStill/portal/internal/infrastructure"
	"github.com/JaimeStill/portal/pkg/middleware"
	"github.com/JaimeStill/portal/pkg/module"
	"github.com/JaimeStill/portal/pkg/openapi"
)

// NewModule creates the API module with all domain handlers and middleware.
// Sessions are resolved for every request; individual routes decide whether
// one is required.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(cfg, runtime)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	groups, err := registerRoutes(mux, domain, cfg, runtime)
	if err != nil {
		return nil, err
	}

	spec, err := openapi.MarshalJSON(BuildSpec(cfg, groups))
	if err != nil {
		return nil, fmt.Errorf("marshal openapi spec: %w", err)
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(spec))

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(middleware.MaxBytes(cfg.API.MaxBodySizeBytes()))
	m.Use(auth.Middleware(runtime.Auth, cfg.Auth.CookieName, runtime.Logger))

	return m, nil
}
