// Package config loads the portal configuration from TOML files and
// PORTAL_* environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/portal/internal/auth"
	"github.com/JaimeStill/portal/internal/clickup"
	"github.com/JaimeStill/portal/internal/forms"
	"github.com/JaimeStill/portal/internal/webhooks"
	"github.com/JaimeStill/portal/pkg/database"
	"github.com/JaimeStill/portal/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvPortalEnv             = "PORTAL_ENV"
	EnvPortalShutdownTimeout = "PORTAL_SHUTDOWN_TIMEOUT"
	EnvPortalVersion         = "PORTAL_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "PORTAL_DB_HOST",
	Port:            "PORTAL_DB_PORT",
	Name:            "PORTAL_DB_NAME",
	User:            "PORTAL_DB_USER",
	Password:        "PORTAL_DB_PASSWORD",
	SSLMode:         "PORTAL_DB_SSL_MODE",
	MaxOpenConns:    "PORTAL_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "PORTAL_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "PORTAL_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "PORTAL_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "PORTAL_STORAGE_CONTAINER_NAME",
	ConnectionString: "PORTAL_STORAGE_CONNECTION_STRING",
	AccountURL:       "PORTAL_STORAGE_ACCOUNT_URL",
	MaxRetries:       "PORTAL_STORAGE_MAX_RETRIES",
}

var authEnv = &auth.Env{
	Provider:     "PORTAL_AUTH_PROVIDER",
	SessionTTL:   "PORTAL_AUTH_SESSION_TTL",
	SuperAdmins:  "PORTAL_AUTH_SUPER_ADMINS",
	AdminBypass:  "PORTAL_AUTH_ADMIN_BYPASS",
	SeedEmail:    "PORTAL_AUTH_SEED_EMAIL",
	SeedPassword: "PORTAL_AUTH_SEED_PASSWORD",
	HostedURL:    "PORTAL_AUTH_HOSTED_URL",
	HostedAPIKey: "PORTAL_AUTH_HOSTED_API_KEY",
	JWTSecret:    "PORTAL_AUTH_JWT_SECRET",
	OIDCIssuer:   "PORTAL_AUTH_OIDC_ISSUER",
	OIDCClientID: "PORTAL_AUTH_OIDC_CLIENT_ID",
}

var formsEnv = &forms.Env{
	FailPolicy:  "PORTAL_FORMS_FAIL_POLICY",
	EnforceAuth: "PORTAL_FORMS_ENFORCE_AUTH",
	CacheSize:   "PORTAL_FORMS_CACHE_SIZE",
	CacheTTL:    "PORTAL_FORMS_CACHE_TTL",
}

var webhooksEnv = &webhooks.Env{
	Simulate:       "PORTAL_WEBHOOKS_SIMULATE",
	SimulateDelay:  "PORTAL_WEBHOOKS_SIMULATE_DELAY",
	Timeout:        "PORTAL_WEBHOOKS_TIMEOUT",
	MaxConcurrency: "PORTAL_WEBHOOKS_MAX_CONCURRENCY",
	PromptURL:      "PORTAL_WEBHOOKS_PROMPT_URL",
	SACURL:         "PORTAL_WEBHOOKS_SAC_URL",
}

var clickupEnv = &clickup.Env{
	BaseURL: "PORTAL_CLICKUP_BASE_URL",
	Token:   "PORTAL_CLICKUP_TOKEN",
	Delay:   "PORTAL_CLICKUP_DELAY",
	Timeout: "PORTAL_CLICKUP_TIMEOUT",
}

// Config is the root configuration for the portal service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Auth            auth.Config     `toml:"auth"`
	Forms           forms.Config    `toml:"forms"`
	Webhooks        webhooks.Config `toml:"webhooks"`
	ClickUp         clickup.Config  `toml:"clickup"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the PORTAL_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvPortalEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Auth.Merge(&overlay.Auth)
	c.Forms.Merge(&overlay.Forms)
	c.Webhooks.Merge(&overlay.Webhooks)
	c.ClickUp.Merge(&overlay.ClickUp)
}

// Finalize applies defaults, environment overrides, and validation to the
// root config and every sub-config. Webhook simulation defaults to on in
// the local environment.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Forms.Finalize(formsEnv); err != nil {
		return fmt.Errorf("forms: %w", err)
	}
	if err := c.Webhooks.Finalize(webhooksEnv); err != nil {
		return fmt.Errorf("webhooks: %w", err)
	}
	if c.Webhooks.Simulate == nil {
		simulate := c.Env() == "local"
		c.Webhooks.Simulate = &simulate
	}
	if err := c.ClickUp.Finalize(clickupEnv); err != nil {
		return fmt.Errorf("clickup: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvPortalShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvPortalVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvPortalEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
