package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/yumina0616/PromptLab-sub000/pkg/auth"
	"github.com/yumina0616/PromptLab-sub000/pkg/database"
	"github.com/yumina0616/PromptLab-sub000/pkg/providers"
	"github.com/yumina0616/PromptLab-sub000/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvPromptLabEnv             = "PROMPTLAB_ENV"
	EnvPromptLabShutdownTimeout = "PROMPTLAB_SHUTDOWN_TIMEOUT"
	EnvPromptLabVersion         = "PROMPTLAB_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "PROMPTLAB_DB_HOST",
	Port:            "PROMPTLAB_DB_PORT",
	Name:            "PROMPTLAB_DB_NAME",
	User:            "PROMPTLAB_DB_USER",
	Password:        "PROMPTLAB_DB_PASSWORD",
	SSLMode:         "PROMPTLAB_DB_SSL_MODE",
	MaxOpenConns:    "PROMPTLAB_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "PROMPTLAB_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "PROMPTLAB_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "PROMPTLAB_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Enabled:          "PROMPTLAB_STORAGE_ENABLED",
	ContainerName:    "PROMPTLAB_STORAGE_CONTAINER_NAME",
	ConnectionString: "PROMPTLAB_STORAGE_CONNECTION_STRING",
}

var authEnv = &auth.Env{
	Secret:       "PROMPTLAB_JWT_SECRET",
	Issuer:       "PROMPTLAB_JWT_ISSUER",
	TokenTTL:     "PROMPTLAB_TOKEN_TTL",
	CookieName:   "PROMPTLAB_AUTH_COOKIE",
	OIDCIssuer:   "PROMPTLAB_OIDC_ISSUER",
	OIDCClientID: "PROMPTLAB_OIDC_CLIENT_ID",
}

var providersEnv = &providers.Env{
	Timeout:        "PROMPTLAB_PROVIDERS_TIMEOUT",
	Mock:           "PROMPTLAB_PROVIDERS_MOCK",
	EmbeddingModel: "PROMPTLAB_EMBEDDING_MODEL",
	OpenAIKey:      "PROMPTLAB_OPENAI_API_KEY",
	OpenAIBaseURL:  "PROMPTLAB_OPENAI_BASE_URL",
	GeminiKey:      "PROMPTLAB_GEMINI_API_KEY",
	AnthropicKey:   "PROMPTLAB_ANTHROPIC_API_KEY",
	OllamaBaseURL:  "PROMPTLAB_OLLAMA_BASE_URL",
}

// Config is the root configuration for the PromptLab service.
type Config struct {
	Server          ServerConfig     `toml:"server"`
	Database        database.Config  `toml:"database"`
	Storage         storage.Config   `toml:"storage"`
	API             APIConfig        `toml:"api"`
	Auth            auth.Config      `toml:"auth"`
	Providers       providers.Config `toml:"providers"`
	Playground      PlaygroundConfig `toml:"playground"`
	Logging         LoggingConfig    `toml:"logging"`
	ShutdownTimeout string           `toml:"shutdown_timeout"`
	Version         string           `toml:"version"`
}

// Env returns the PROMPTLAB_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvPromptLabEnv); env != "" {
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

	if err := cfg.finalize(); err != nil {
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
	c.Providers.Merge(&overlay.Providers)
	c.Playground.Merge(&overlay.Playground)
	c.Logging.Merge(&overlay.Logging)
}

func (c *Config) finalize() error {
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
	if err := c.Providers.Finalize(providersEnv); err != nil {
		return fmt.Errorf("providers: %w", err)
	}
	if err := c.Playground.Finalize(); err != nil {
		return fmt.Errorf("playground: %w", err)
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
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
	if v := os.Getenv(EnvPromptLabShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvPromptLabVersion); v != "" {
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
	if env := os.Getenv(EnvPromptLabEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
