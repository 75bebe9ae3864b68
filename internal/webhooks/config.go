package webhooks

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// EndpointConfig is the configuration form of an Endpoint.
type EndpointConfig struct {
	URL         string            `toml:"url"`
	Headers     map[string]string `toml:"headers"`
	Enabled     bool              `toml:"enabled"`
	Description string            `toml:"description"`
}

// Config controls webhook dispatch and overrides the compiled-in registry.
type Config struct {
	// Simulate replaces outbound calls with successful fake results.
	// Left nil, the application decides from its environment.
	Simulate       *bool  `toml:"simulate"`
	SimulateDelay  string `toml:"simulate_delay"`
	Timeout        string `toml:"timeout"`
	MaxConcurrency int    `toml:"max_concurrency"`

	// Endpoints replaces the default endpoint list of each listed form-type.
	Endpoints map[string][]EndpointConfig `toml:"endpoints"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Simulate       string
	SimulateDelay  string
	Timeout        string
	MaxConcurrency string
	PromptURL      string
	SACURL         string
}

// SimulateDelayDuration returns SimulateDelay as a time.Duration.
func (c *Config) SimulateDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.SimulateDelay)
	return d
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Simulated reports whether dispatch is simulated.
func (c *Config) Simulated() bool {
	return c.Simulate != nil && *c.Simulate
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. Endpoint lists merge per form-type.
func (c *Config) Merge(overlay *Config) {
	if overlay.Simulate != nil {
		c.Simulate = overlay.Simulate
	}
	if overlay.SimulateDelay != "" {
		c.SimulateDelay = overlay.SimulateDelay
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.MaxConcurrency != 0 {
		c.MaxConcurrency = overlay.MaxConcurrency
	}
	for formType, endpoints := range overlay.Endpoints {
		if c.Endpoints == nil {
			c.Endpoints = make(map[string][]EndpointConfig)
		}
		c.Endpoints[formType] = endpoints
	}
}

func (c *Config) loadDefaults() {
	if c.SimulateDelay == "" {
		c.SimulateDelay = "500ms"
	}
	if c.Timeout == "" {
		c.Timeout = "10s"
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = 4
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Simulate != "" {
		if v := os.Getenv(env.Simulate); v != "" {
			if simulate, err := strconv.ParseBool(v); err == nil {
				c.Simulate = &simulate
			}
		}
	}
	if env.SimulateDelay != "" {
		if v := os.Getenv(env.SimulateDelay); v != "" {
			c.SimulateDelay = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
	if env.MaxConcurrency != "" {
		if v := os.Getenv(env.MaxConcurrency); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxConcurrency = n
			}
		}
	}
	c.overrideURL(env.PromptURL, FormTypePrompt)
	c.overrideURL(env.SACURL, FormTypeSAC)
}

// overrideURL points the form-type at a single enabled endpoint read from the environment.
func (c *Config) overrideURL(name, formType string) {
	if name == "" {
		return
	}
	v := os.Getenv(name)
	if v == "" {
		return
	}

	ep := EndpointConfig{URL: v, Enabled: true}
	if defaults := defaultEndpoints[formType]; len(defaults) > 0 {
		ep.Description = defaults[0].Description
	}
	if c.Endpoints == nil {
		c.Endpoints = make(map[string][]EndpointConfig)
	}
	c.Endpoints[formType] = []EndpointConfig{ep}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.SimulateDelay); err != nil {
		return fmt.Errorf("invalid simulate_delay: %w", err)
	}
	if d, err := time.ParseDuration(c.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid timeout: %s", c.Timeout)
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be positive")
	}
	for formType, endpoints := range c.Endpoints {
		for i, ep := range endpoints {
			if ep.Enabled && ep.URL == "" {
				return fmt.Errorf("endpoints.%s[%d]: url required when enabled", formType, i)
			}
		}
	}
	return nil
}
