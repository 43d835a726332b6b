package auth

import (
	"fmt"
	"os"
	"time"
)

// Config holds token signing and external identity provider settings.
type Config struct {
	Secret       string `toml:"jwt_secret"`
	Issuer       string `toml:"issuer"`
	TokenTTL     string `toml:"token_ttl"`
	CookieName   string `toml:"cookie_name"`
	OIDCIssuer   string `toml:"oidc_issuer"`
	OIDCClientID string `toml:"oidc_client_id"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Secret       string
	Issuer       string
	TokenTTL     string
	CookieName   string
	OIDCIssuer   string
	OIDCClientID string
}

// TokenTTLDuration returns TokenTTL as a time.Duration.
func (c *Config) TokenTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TokenTTL)
	return d
}

// OIDCEnabled reports whether an external identity provider is configured.
func (c *Config) OIDCEnabled() bool {
	return c.OIDCIssuer != "" && c.OIDCClientID != ""
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
	if overlay.Secret != "" {
		c.Secret = overlay.Secret
	}
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.TokenTTL != "" {
		c.TokenTTL = overlay.TokenTTL
	}
	if overlay.CookieName != "" {
		c.CookieName = overlay.CookieName
	}
	if overlay.OIDCIssuer != "" {
		c.OIDCIssuer = overlay.OIDCIssuer
	}
	if overlay.OIDCClientID != "" {
		c.OIDCClientID = overlay.OIDCClientID
	}
}

func (c *Config) loadDefaults() {
	if c.Issuer == "" {
		c.Issuer = "promptlab"
	}
	if c.TokenTTL == "" {
		c.TokenTTL = "24h"
	}
	if c.CookieName == "" {
		c.CookieName = "promptlab_token"
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

	set(env.Secret, &c.Secret)
	set(env.Issuer, &c.Issuer)
	set(env.TokenTTL, &c.TokenTTL)
	set(env.CookieName, &c.CookieName)
	set(env.OIDCIssuer, &c.OIDCIssuer)
	set(env.OIDCClientID, &c.OIDCClientID)
}

func (c *Config) validate() error {
	if len(c.Secret) < 32 {
		return fmt.Errorf("jwt_secret must be at least 32 bytes")
	}
	if d, err := time.ParseDuration(c.TokenTTL); err != nil || d <= 0 {
		return fmt.Errorf("invalid token_ttl: %q", c.TokenTTL)
	}
	if (c.OIDCIssuer == "") != (c.OIDCClientID == "") {
		return fmt.Errorf("oidc_issuer and oidc_client_id must be set together")
	}
	return nil
}
