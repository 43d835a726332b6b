// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/yumina0616/PromptLab-sub000/internal/config"
	"github.com/yumina0616/PromptLab-sub000/internal/infrastructure"
	"github.com/yumina0616/PromptLab-sub000/pkg/auth"
	"github.com/yumina0616/PromptLab-sub000/pkg/metrics"
	"github.com/yumina0616/PromptLab-sub000/pkg/middleware"
	"github.com/yumina0616/PromptLab-sub000/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// Identity is resolved from a bearer token or the session cookie before any
// handler runs; handlers decide whether an identity is required.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg); err != nil {
		return nil, err
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(metrics.Middleware())
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Infrastructure.Logger))
	m.Use(auth.Middleware(runtime.Tokens, runtime.CookieName, runtime.Infrastructure.Logger))

	return m, nil
}
