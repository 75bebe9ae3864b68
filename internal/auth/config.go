package auth

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Provider names accepted by Config.Provider.
const (
	ProviderMemory = "memory"
	ProviderHosted = "hosted"
	ProviderOIDC   = "oidc"
)

var providers = []string{ProviderMemory, ProviderHosted, ProviderOIDC}

// Config selects and parameterizes the credential provider.
type Config struct {
	Provider    string   `toml:"provider"`
	SessionTTL  string   `toml:"session_ttl"`
	CookieName  string   `toml:"cookie_name"`
	SuperAdmins []string `toml:"super_admins"`
	AdminBypass bool     `toml:"admin_bypass"`

	// memory provider
	SeedEmail    string `toml:"seed_email"`
	SeedPassword string `toml:"seed_password"`
	SeedName     string `toml:"seed_name"`

	// hosted provider
	HostedURL    string `toml:"hosted_url"`
	HostedAPIKey string `toml:"hosted_api_key"`
	JWTSecret    string `toml:"jwt_secret"`
	Timeout      string `toml:"timeout"`

	// oidc provider
	OIDCIssuer   string `toml:"oidc_issuer"`
	OIDCClientID string `toml:"oidc_client_id"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider     string
	SessionTTL   string
	SuperAdmins  string
	AdminBypass  string
	SeedEmail    string
	SeedPassword string
	HostedURL    string
	HostedAPIKey string
	JWTSecret    string
	OIDCIssuer   string
	OIDCClientID string
}

// SessionTTLDuration returns SessionTTL as a time.Duration.
func (c *Config) SessionTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.SessionTTL)
	return d
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Policy returns the admin gate policy derived from the config.
func (c *Config) Policy() AdminPolicy {
	return AdminPolicy{
		SuperAdmins: c.SuperAdmins,
		Bypass:      c.AdminBypass,
	}
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. AdminBypass always applies.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.SessionTTL != "" {
		c.SessionTTL = overlay.SessionTTL
	}
	if overlay.CookieName != "" {
		c.CookieName = overlay.CookieName
	}
	if overlay.SuperAdmins != nil {
		c.SuperAdmins = overlay.SuperAdmins
	}
	c.AdminBypass = overlay.AdminBypass
	if overlay.SeedEmail != "" {
		c.SeedEmail = overlay.SeedEmail
	}
	if overlay.SeedPassword != "" {
		c.SeedPassword = overlay.SeedPassword
	}
	if overlay.SeedName != "" {
		c.SeedName = overlay.SeedName
	}
	if overlay.HostedURL != "" {
		c.HostedURL = overlay.HostedURL
	}
	if overlay.HostedAPIKey != "" {
		c.HostedAPIKey = overlay.HostedAPIKey
	}
	if overlay.JWTSecret != "" {
		c.JWTSecret = overlay.JWTSecret
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.OIDCIssuer != "" {
		c.OIDCIssuer = overlay.OIDCIssuer
	}
	if overlay.OIDCClientID != "" {
		c.OIDCClientID = overlay.OIDCClientID
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderMemory
	}
	if c.SessionTTL == "" {
		c.SessionTTL = "24h"
	}
	if c.CookieName == "" {
		c.CookieName = "portal_session"
	}
	if c.SeedEmail == "" {
		c.SeedEmail = "admin@carbonecompany.com"
	}
	if c.SeedName == "" {
		c.SeedName = "Administrador"
	}
	if len(c.SuperAdmins) == 0 {
		c.SuperAdmins = []string{c.SeedEmail}
	}
	if c.Timeout == "" {
		c.Timeout = "10s"
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	set(env.Provider, &c.Provider)
	set(env.SessionTTL, &c.SessionTTL)
	set(env.SeedEmail, &c.SeedEmail)
	set(env.SeedPassword, &c.SeedPassword)
	set(env.HostedURL, &c.HostedURL)
	set(env.HostedAPIKey, &c.HostedAPIKey)
	set(env.JWTSecret, &c.JWTSecret)
	set(env.OIDCIssuer, &c.OIDCIssuer)
	set(env.OIDCClientID, &c.OIDCClientID)

	if env.SuperAdmins != "" {
		if v := os.Getenv(env.SuperAdmins); v != "" {
			admins := strings.Split(v, ",")
			c.SuperAdmins = make([]string, 0, len(admins))
			for _, a := range admins {
				if trimmed := strings.TrimSpace(a); trimmed != "" {
					c.SuperAdmins = append(c.SuperAdmins, trimmed)
				}
			}
		}
	}
	if env.AdminBypass != "" {
		if v := os.Getenv(env.AdminBypass); v != "" {
			if bypass, err := strconv.ParseBool(v); err == nil {
				c.AdminBypass = bypass
			}
		}
	}
}

func (c *Config) validate() error {
	if !slices.Contains(providers, c.Provider) {
		return fmt.Errorf("%w: %s", ErrUnknownProvider, c.Provider)
	}
	if _, err := time.ParseDuration(c.SessionTTL); err != nil {
		return fmt.Errorf("invalid session_ttl: %w", err)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}

	switch c.Provider {
	case ProviderMemory:
		if c.SeedPassword == "" {
			return fmt.Errorf("seed_password required for memory provider")
		}
	case ProviderHosted:
		if c.HostedURL == "" {
			return fmt.Errorf("hosted_url required for hosted provider")
		}
		if c.JWTSecret == "" {
			return fmt.Errorf("jwt_secret required for hosted provider")
		}
	case ProviderOIDC:
		if c.OIDCIssuer == "" || c.OIDCClientID == "" {
			return fmt.Errorf("oidc_issuer and oidc_client_id required for oidc provider")
		}
	}
	return nil
}
