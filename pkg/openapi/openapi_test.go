package openapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yumina0616/PromptLab-sub000/pkg/openapi"
)

func TestNewSpec(t *testing.T) {
	spec := openapi.NewSpec("PromptLab API", "0.1.0")
	spec.AddServer("/api")
	spec.SetDescription("prompts")

	if spec.OpenAPI != "3.1.0" || spec.Info.Title != "PromptLab API" || spec.Info.Version != "0.1.0" {
		t.Errorf("info = %+v", spec.Info)
	}
	if len(spec.Servers) != 1 || spec.Servers[0].URL != "/api" {
		t.Errorf("servers = %v", spec.Servers)
	}
	if spec.Info.Description != "prompts" {
		t.Errorf("description = %q", spec.Info.Description)
	}
}

func TestAddOperation(t *testing.T) {
	spec := openapi.NewSpec("t", "1")
	get := &openapi.Operation{Summary: "get"}
	patch := &openapi.Operation{Summary: "patch"}

	spec.AddOperation("/prompts/{id}", "GET", get)
	spec.AddOperation("/prompts/{id}", "PATCH", patch)
	spec.AddOperation("/prompts/{id}", "TRACE", &openapi.Operation{})

	item := spec.Paths["/prompts/{id}"]
	if item == nil {
		t.Fatal("path item missing")
	}
	if item.Get != get || item.Patch != patch {
		t.Errorf("item = %+v", item)
	}
	if item.Post != nil || item.Put != nil || item.Delete != nil {
		t.Error("unset methods should be nil")
	}
}

func TestRefs(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"schema ref", openapi.SchemaRef("Prompt").Ref, "#/components/schemas/Prompt"},
		{"response ref", openapi.ResponseRef("NotFound").Ref, "#/components/responses/NotFound"},
		{"request body", openapi.RequestBodyJSON("CreatePrompt", true).Content["application/json"].Schema.Ref, "#/components/schemas/CreatePrompt"},
		{"response body", openapi.ResponseJSON("ok", "Prompt").Content["application/json"].Schema.Ref, "#/components/schemas/Prompt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestParams(t *testing.T) {
	p := openapi.PathParam("id", "Prompt ID")
	if p.In != "path" || !p.Required || p.Schema.Format != "uuid" {
		t.Errorf("path param = %+v", p)
	}

	q := openapi.QueryParam("sort", "string", "recent or stars", false)
	if q.In != "query" || q.Required || q.Schema.Type != "string" {
		t.Errorf("query param = %+v", q)
	}
}

func TestComponents(t *testing.T) {
	c := openapi.NewComponents()

	for _, name := range []string{"PageRequest", "ErrorResponse"} {
		if _, ok := c.Schemas[name]; !ok {
			t.Errorf("missing schema %s", name)
		}
	}
	for _, name := range []string{"BadRequest", "Unauthorized", "Forbidden", "NotFound", "Conflict", "TooManyRequests", "BadGateway"} {
		r, ok := c.Responses[name]
		if !ok {
			t.Errorf("missing response %s", name)
			continue
		}
		if r.Content["application/json"].Schema.Ref != "#/components/schemas/ErrorResponse" {
			t.Errorf("%s should reference ErrorResponse", name)
		}
	}

	c.AddSchemas(map[string]*openapi.Schema{"Prompt": {Type: "object"}})
	c.AddResponses(map[string]*openapi.Response{"Gone": {Description: "gone"}})
	if _, ok := c.Schemas["Prompt"]; !ok {
		t.Error("Prompt schema not added")
	}
	if _, ok := c.Responses["Gone"]; !ok {
		t.Error("Gone response not added")
	}
}

func TestServeSpec(t *testing.T) {
	spec := openapi.NewSpec("PromptLab API", "0.1.0")
	spec.AddOperation("/prompts", "GET", &openapi.Operation{Summary: "List prompts"})
	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	rec := httptest.NewRecorder()
	openapi.ServeSpec(data)(rec, httptest.NewRequest("GET", "/openapi.json", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content-type = %q", ct)
	}

	var parsed struct {
		OpenAPI string                    `json:"openapi"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed.OpenAPI != "3.1.0" {
		t.Errorf("openapi = %q", parsed.OpenAPI)
	}
	if _, ok := parsed.Paths["/prompts"]["get"]; !ok {
		t.Errorf("paths = %v", parsed.Paths)
	}
}

func TestConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := openapi.Config{}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if cfg.Title != "PromptLab API" || cfg.Description == "" {
			t.Errorf("cfg = %+v", cfg)
		}
	})

	t.Run("env", func(t *testing.T) {
		t.Setenv("TEST_OPENAPI_TITLE", "Lab")
		cfg := openapi.Config{}
		if err := cfg.Finalize(&openapi.ConfigEnv{Title: "TEST_OPENAPI_TITLE"}); err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if cfg.Title != "Lab" {
			t.Errorf("title = %q", cfg.Title)
		}
	})

	t.Run("merge", func(t *testing.T) {
		base := openapi.Config{Title: "Base", Description: "keep"}
		base.Merge(&openapi.Config{Title: "Overlay"})
		if base.Title != "Overlay" || base.Description != "keep" {
			t.Errorf("merged = %+v", base)
		}
	})
}
