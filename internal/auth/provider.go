package auth

import (
	"fmt"
	"log/slog"
)

// New constructs the Provider named by cfg.Provider.
func New(cfg *Config, logger *slog.Logger) (Provider, error) {
	switch cfg.Provider {
	case ProviderMemory:
		return NewMemory(cfg, logger)
	case ProviderHosted:
		return NewHosted(cfg, logger), nil
	case ProviderOIDC:
		return NewOIDC(cfg, logger), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
}
