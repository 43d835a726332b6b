package providers

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Credentials configures a single upstream provider.
type Credentials struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// Config holds provider credentials and call limits.
type Config struct {
	Timeout        string      `toml:"timeout"`
	Mock           bool        `toml:"mock"`
	EmbeddingModel string      `toml:"embedding_model"`
	OpenAI         Credentials `toml:"openai"`
	Gemini         Credentials `toml:"gemini"`
	Anthropic      Credentials `toml:"anthropic"`
	Ollama         Credentials `toml:"ollama"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Timeout        string
	Mock           string
	EmbeddingModel string
	OpenAIKey      string
	OpenAIBaseURL  string
	GeminiKey      string
	AnthropicKey   string
	OllamaBaseURL  string
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

// Merge overwrites non-zero fields from overlay. Mock always applies.
func (c *Config) Merge(overlay *Config) {
	c.Mock = overlay.Mock
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.EmbeddingModel != "" {
		c.EmbeddingModel = overlay.EmbeddingModel
	}
	c.OpenAI.merge(overlay.OpenAI)
	c.Gemini.merge(overlay.Gemini)
	c.Anthropic.merge(overlay.Anthropic)
	c.Ollama.merge(overlay.Ollama)
}

func (c *Credentials) merge(overlay Credentials) {
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
}

func (c *Config) loadDefaults() {
	if c.Timeout == "" {
		c.Timeout = "60s"
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = "text-embedding-3-small"
	}
	if c.Ollama.BaseURL == "" {
		c.Ollama.BaseURL = "http://localhost:11434"
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

	set(env.Timeout, &c.Timeout)
	set(env.EmbeddingModel, &c.EmbeddingModel)
	set(env.OpenAIKey, &c.OpenAI.APIKey)
	set(env.OpenAIBaseURL, &c.OpenAI.BaseURL)
	set(env.GeminiKey, &c.Gemini.APIKey)
	set(env.AnthropicKey, &c.Anthropic.APIKey)
	set(env.OllamaBaseURL, &c.Ollama.BaseURL)

	if env.Mock != "" {
		if v := os.Getenv(env.Mock); v != "" {
			if mock, err := strconv.ParseBool(v); err == nil {
				c.Mock = mock
			}
		}
	}
}

func (c *Config) validate() error {
	if d, err := time.ParseDuration(c.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid timeout: %q", c.Timeout)
	}
	return nil
}
