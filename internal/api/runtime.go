package api

import (
	"github.com/yumina0616/PromptLab-sub000/internal/config"
	"github.com/yumina0616/PromptLab-sub000/internal/infrastructure"
	"github.com/yumina0616/PromptLab-sub000/pkg/pagination"
	"github.com/yumina0616/PromptLab-sub000/pkg/ratelimit"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	CookieName string
	Limiter    *ratelimit.Limiter
}

// NewRuntime creates an API runtime with a module-scoped logger.
// Playground runs and admin model tests share one per-user limiter.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
			Tokens:    infra.Tokens,
			OIDC:      infra.OIDC,
			Providers: infra.Providers,
			Tokenizer: infra.Tokenizer,
			Embedder:  infra.Embedder,
		},
		Pagination: cfg.API.Pagination,
		CookieName: cfg.Auth.CookieName,
		Limiter:    ratelimit.PerMinute(cfg.Playground.RatePerMinute, cfg.Playground.Burst),
	}
}
