// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, storage, credentials,
// and upstream providers) that domain systems require.
package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/yumina0616/PromptLab-sub000/internal/config"
	"github.com/yumina0616/PromptLab-sub000/pkg/auth"
	"github.com/yumina0616/PromptLab-sub000/pkg/database"
	"github.com/yumina0616/PromptLab-sub000/pkg/lifecycle"
	"github.com/yumina0616/PromptLab-sub000/pkg/providers"
	"github.com/yumina0616/PromptLab-sub000/pkg/storage"
)

const oidcDiscoveryTimeout = 10 * time.Second

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Tokens    *auth.Tokens
	OIDC      auth.IDTokenVerifier
	Providers providers.Caller
	Tokenizer providers.Tokenizer
	Embedder  providers.Embedder
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
// OIDC discovery runs here when an issuer is configured.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := NewLogger(&cfg.Logging, os.Stderr)

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	var verifier auth.IDTokenVerifier
	if cfg.Auth.OIDCEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), oidcDiscoveryTimeout)
		defer cancel()

		verifier, err = auth.NewOIDCVerifier(ctx, &cfg.Auth)
		if err != nil {
			return nil, fmt.Errorf("oidc init failed: %w", err)
		}
	}

	tokenizer := providers.NewTiktoken(logger)

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Tokens:    auth.NewTokens(&cfg.Auth),
		OIDC:      verifier,
		Providers: providers.NewRegistry(&cfg.Providers, tokenizer, logger),
		Tokenizer: tokenizer,
		Embedder:  providers.NewEmbedder(&cfg.Providers),
	}, nil
}

// NewLogger builds the root slog logger from the logging config.
func NewLogger(cfg *config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// Database and storage hooks are registered for startup and shutdown coordination.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}
