package clickup

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// Config holds the ClickUp API connection settings.
type Config struct {
	BaseURL string `toml:"base_url"`
	Token   string `toml:"token"`
	// Delay is applied after every upstream call to stay under ClickUp rate limits.
	Delay   string `toml:"delay"`
	Timeout string `toml:"timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	BaseURL string
	Token   string
	Delay   string
	Timeout string
}

// DelayDuration returns Delay as a time.Duration.
func (c *Config) DelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.Delay)
	return d
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
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
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Token != "" {
		c.Token = overlay.Token
	}
	if overlay.Delay != "" {
		c.Delay = overlay.Delay
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *Config) loadDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.clickup.com/api/v2/"
	}
	if c.Delay == "" {
		c.Delay = "500ms"
	}
	if c.Timeout == "" {
		c.Timeout = "15s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.BaseURL != "" {
		if v := os.Getenv(env.BaseURL); v != "" {
			c.BaseURL = v
		}
	}
	if env.Token != "" {
		if v := os.Getenv(env.Token); v != "" {
			c.Token = v
		}
	}
	if env.Delay != "" {
		if v := os.Getenv(env.Delay); v != "" {
			c.Delay = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
}

func (c *Config) validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base_url: %s", c.BaseURL)
	}
	if !strings.HasSuffix(c.BaseURL, "/") {
		c.BaseURL += "/"
	}
	if d, err := time.ParseDuration(c.Delay); err != nil || d < 0 {
		return fmt.Errorf("invalid delay: %s", c.Delay)
	}
	if d, err := time.ParseDuration(c.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid timeout: %s", c.Timeout)
	}
	return nil
}
