package api

import (
	"fmt"

	"github.com/JaimeStill/portal/internal/clickup"
	"github.com/JaimeStill/portal/internal/config"
	"github.com/JaimeStill/portal/internal/forms"
	"github.com/JaimeStill/portal/internal/history"
	"github.com/JaimeStill/portal/internal/settings"
	"github.com/JaimeStill/portal/internal/users"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Forms    forms.System
	History  history.System
	Users    users.System
	Settings settings.System
	ClickUp  *clickup.Client
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) (*Domain, error) {
	db := runtime.Database.Connection()

	clickupClient, err := clickup.New(&cfg.ClickUp, runtime.Logger)
	if err != nil {
		return nil, fmt.Errorf("clickup init failed: %w", err)
	}

	return &Domain{
		Forms:    forms.New(db, cfg.Forms, runtime.Logger),
		History:  history.New(db, runtime.Storage, runtime.Logger, runtime.Pagination),
		Users:    users.New(db, runtime.Logger, runtime.Pagination),
		Settings: settings.New(db, runtime.Logger),
		ClickUp:  clickupClient,
	}, nil
}
