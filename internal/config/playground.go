package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvPlaygroundRate  = "PROMPTLAB_PLAYGROUND_RATE_PER_MINUTE"
	EnvPlaygroundBurst = "PROMPTLAB_PLAYGROUND_BURST"
)

// PlaygroundConfig bounds how often a single user may call upstream providers.
// Both values default when unset.
type PlaygroundConfig struct {
	RatePerMinute int `toml:"rate_per_minute"`
	Burst         int `toml:"burst"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PlaygroundConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *PlaygroundConfig) Merge(overlay *PlaygroundConfig) {
	if overlay.RatePerMinute != 0 {
		c.RatePerMinute = overlay.RatePerMinute
	}
	if overlay.Burst != 0 {
		c.Burst = overlay.Burst
	}
}

func (c *PlaygroundConfig) loadDefaults() {
	if c.RatePerMinute == 0 {
		c.RatePerMinute = 20
	}
	if c.Burst == 0 {
		c.Burst = 5
	}
}

func (c *PlaygroundConfig) loadEnv() {
	if v := os.Getenv(EnvPlaygroundRate); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RatePerMinute = n
		}
	}
	if v := os.Getenv(EnvPlaygroundBurst); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Burst = n
		}
	}
}

func (c *PlaygroundConfig) validate() error {
	if c.RatePerMinute < 0 {
		return fmt.Errorf("rate_per_minute must not be negative: %d", c.RatePerMinute)
	}
	if c.Burst < 1 {
		return fmt.Errorf("burst must be positive: %d", c.Burst)
	}
	return nil
}
