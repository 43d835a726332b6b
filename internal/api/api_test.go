package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yumina0616/PromptLab-sub000/internal/api"
	"github.com/yumina0616/PromptLab-sub000/internal/config"
	"github.com/yumina0616/PromptLab-sub000/internal/infrastructure"
	"github.com/yumina0616/PromptLab-sub000/pkg/auth"
	"github.com/yumina0616/PromptLab-sub000/pkg/database"
	"github.com/yumina0616/PromptLab-sub000/pkg/module"
)

func validConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     "1m",
			WriteTimeout:    "15m",
			ShutdownTimeout: "30s",
		},
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "promptlab",
			User:            "promptlab",
			Password:        "promptlab",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
		},
		Auth:            auth.Config{Secret: strings.Repeat("k", 32)},
		Logging:         config.LoggingConfig{Level: "error", Format: "text"},
		ShutdownTimeout: "30s",
		Version:         "0.1.0",
	}
	if err := cfg.API.Finalize(); err != nil {
		t.Fatalf("api finalize: %v", err)
	}
	if err := cfg.Auth.Finalize(nil); err != nil {
		t.Fatalf("auth finalize: %v", err)
	}
	if err := cfg.Providers.Finalize(nil); err != nil {
		t.Fatalf("providers finalize: %v", err)
	}
	if err := cfg.Playground.Finalize(); err != nil {
		t.Fatalf("playground finalize: %v", err)
	}
	return cfg
}

func setupModule(t *testing.T) (*module.Module, *config.Config) {
	t.Helper()
	cfg := validConfig(t)
	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}
	t.Cleanup(func() { infra.Database.Connection().Close() })

	m, err := api.NewModule(cfg, infra)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}
	return m, cfg
}

func TestNewModule(t *testing.T) {
	m, _ := setupModule(t)
	if m.Prefix() != "/api" {
		t.Errorf("prefix: got %s, want /api", m.Prefix())
	}
}

func TestNewRuntime(t *testing.T) {
	cfg := validConfig(t)
	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}
	defer infra.Database.Connection().Close()

	runtime := api.NewRuntime(cfg, infra)

	if runtime.Pagination.DefaultPageSize != 20 || runtime.Pagination.MaxPageSize != 100 {
		t.Errorf("pagination = %+v, want 20/100", runtime.Pagination)
	}
	if runtime.CookieName != cfg.Auth.CookieName {
		t.Errorf("cookie name = %q, want %q", runtime.CookieName, cfg.Auth.CookieName)
	}
	if runtime.Limiter == nil || runtime.Tokens == nil || runtime.Providers == nil {
		t.Error("limiter, tokens, and providers must be set")
	}
	if runtime.Database == nil || runtime.Storage == nil || runtime.Lifecycle == nil {
		t.Error("core systems must be carried over")
	}

	domain := api.NewDomain(runtime)
	if domain.Prompts == nil || domain.Workspaces == nil || domain.Playground == nil || domain.Tips == nil {
		t.Error("domain systems must be constructed")
	}
}

func TestOpenAPIDocument(t *testing.T) {
	m, _ := setupModule(t)

	rec := httptest.NewRecorder()
	m.Serve(rec, httptest.NewRequest("GET", "/api/openapi.json", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var doc struct {
		OpenAPI string                     `json:"openapi"`
		Paths   map[string]json.RawMessage `json:"paths"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}

	for _, path := range []string{
		"/auth/register",
		"/prompts",
		"/prompts/{id}/versions/{verId}/favorite",
		"/workspaces/{id}/prompts/{promptId}/share",
		"/playground/run",
		"/tips/suggest",
		"/models/test",
	} {
		if _, ok := doc.Paths[path]; !ok {
			t.Errorf("openapi document missing %s", path)
		}
	}
}

func TestRoutesWithoutDatabase(t *testing.T) {
	m, _ := setupModule(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"create prompt anonymous", "POST", "/api/prompts", `{}`, http.StatusUnauthorized},
		{"profile anonymous", "GET", "/api/users/me", "", http.StatusUnauthorized},
		{"playground anonymous", "POST", "/api/playground/run", `{}`, http.StatusUnauthorized},
		{"tip bad id", "GET", "/api/tips/not-a-uuid", "", http.StatusBadRequest},
		{"prompt list bad limit", "GET", "/api/prompts?limit=0", "", http.StatusBadRequest},
		{"register invalid", "POST", "/api/auth/register", `{"email":"nope"}`, http.StatusBadRequest},
		{"oidc disabled", "POST", "/api/auth/oidc", `{"id_token":"x"}`, http.StatusNotFound},
		{"unknown route", "GET", "/api/nothing-here", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			m.Serve(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}
