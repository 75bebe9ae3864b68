package forms

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Fail policies applied when a form setting cannot be read.
const (
	FailOpen   = "open"
	FailClosed = "closed"
)

// Config controls access resolution and its cache.
type Config struct {
	FailPolicy string `toml:"fail_policy"`

	// EnforceAuth honors stored isPublic/requiresAuth values. When false every
	// form is treated as public and only the enabled flag restricts access.
	EnforceAuth *bool  `toml:"enforce_auth"`
	CacheSize   int    `toml:"cache_size"`
	CacheTTL    string `toml:"cache_ttl"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	FailPolicy  string
	EnforceAuth string
	CacheSize   string
	CacheTTL    string
}

// CacheTTLDuration returns CacheTTL as a time.Duration.
func (c *Config) CacheTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.CacheTTL)
	return d
}

// Enforced reports whether stored auth requirements apply.
func (c *Config) Enforced() bool {
	return c.EnforceAuth == nil || *c.EnforceAuth
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.FailPolicy != "" {
		c.FailPolicy = overlay.FailPolicy
	}
	if overlay.EnforceAuth != nil {
		c.EnforceAuth = overlay.EnforceAuth
	}
	if overlay.CacheSize != 0 {
		c.CacheSize = overlay.CacheSize
	}
	if overlay.CacheTTL != "" {
		c.CacheTTL = overlay.CacheTTL
	}
}

func (c *Config) loadDefaults() {
	if c.FailPolicy == "" {
		c.FailPolicy = FailOpen
	}
	if c.EnforceAuth == nil {
		enforce := true
		c.EnforceAuth = &enforce
	}
	if c.CacheSize <= 0 {
		c.CacheSize = 128
	}
	if c.CacheTTL == "" {
		c.CacheTTL = "30s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.FailPolicy != "" {
		if v := os.Getenv(env.FailPolicy); v != "" {
			c.FailPolicy = v
		}
	}
	if env.EnforceAuth != "" {
		if v := os.Getenv(env.EnforceAuth); v != "" {
			if enforce, err := strconv.ParseBool(v); err == nil {
				c.EnforceAuth = &enforce
			}
		}
	}
	if env.CacheSize != "" {
		if v := os.Getenv(env.CacheSize); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.CacheSize = n
			}
		}
	}
	if env.CacheTTL != "" {
		if v := os.Getenv(env.CacheTTL); v != "" {
			c.CacheTTL = v
		}
	}
}

func (c *Config) validate() error {
	if c.FailPolicy != FailOpen && c.FailPolicy != FailClosed {
		return fmt.Errorf("fail_policy must be %q or %q: %s", FailOpen, FailClosed, c.FailPolicy)
	}
	if c.CacheSize < 1 {
		return fmt.Errorf("cache_size must be positive")
	}
	if _, err := time.ParseDuration(c.CacheTTL); err != nil {
		return fmt.Errorf("invalid cache_ttl: %w", err)
	}
	return nil
}
