package providers_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/tmc/langchaingo/llms"

	"github.com/yumina0616/PromptLab-sub000/pkg/errcode"
	"github.com/yumina0616/PromptLab-sub000/pkg/providers"
)

type fakeModel struct {
	opts   llms.CallOptions
	prompt string
	output string
	err    error
}

func (f *fakeModel) GenerateContent(_ context.Context, msgs []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, opt := range options {
		opt(&f.opts)
	}
	if len(msgs) > 0 && len(msgs[0].Parts) > 0 {
		if text, ok := msgs[0].Parts[0].(llms.TextContent); ok {
			f.prompt = text.Text
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.output}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func finalized(t *testing.T, cfg providers.Config) *providers.Config {
	t.Helper()
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return &cfg
}

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }

func TestRegistryCallAppliesParams(t *testing.T) {
	model := &fakeModel{output: "four words right here"}
	reg := providers.NewRegistry(finalized(t, providers.Config{}), providers.Approx{}, discard())
	reg.Register(providers.OpenAI, model)

	res, err := reg.Call(context.Background(), providers.Request{
		Provider: providers.OpenAI,
		Model:    "gpt-4o-mini",
		Prompt:   "Summarize this",
		Params: providers.Params{
			Temperature:      f64(0.2),
			MaxTokens:        intp(64),
			TopP:             f64(0.9),
			FrequencyPenalty: f64(0.5),
			PresencePenalty:  f64(0.1),
			ResponseFormat:   "json",
		},
	})
	if err != nil {
		t.Fatalf("call: %v", err)
	}

	if res.Output != "four words right here" {
		t.Errorf("output = %q", res.Output)
	}
	if model.prompt != "Summarize this" {
		t.Errorf("prompt = %q", model.prompt)
	}

	got := model.opts
	if got.Model != "gpt-4o-mini" || got.Temperature != 0.2 || got.MaxTokens != 64 || got.TopP != 0.9 {
		t.Errorf("options = %+v", got)
	}
	if got.FrequencyPenalty != 0.5 || got.PresencePenalty != 0.1 || !got.JSONMode {
		t.Errorf("penalties/json = %+v", got)
	}

	if res.Usage.PromptTokens != 4 || res.Usage.CompletionTokens != 6 || res.Usage.TotalTokens != 10 {
		t.Errorf("usage = %+v", res.Usage)
	}
}

func TestRegistryCallErrors(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		register llms.Model
		wantErr  error
		status   int
	}{
		{"unknown provider", "cohere", nil, providers.ErrUnknownProvider, http.StatusBadRequest},
		{"missing credentials", providers.Anthropic, nil, providers.ErrNotConfigured, http.StatusBadGateway},
		{"upstream failure", providers.Gemini, &fakeModel{err: errors.New("quota exceeded")}, providers.ErrUpstream, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := providers.NewRegistry(finalized(t, providers.Config{}), providers.Approx{}, discard())
			if tt.register != nil {
				reg.Register(tt.provider, tt.register)
			}

			_, err := reg.Call(context.Background(), providers.Request{Provider: tt.provider, Model: "m", Prompt: "p"})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got := providers.MapHTTPStatus(err); got != tt.status {
				t.Errorf("status = %d, want %d", got, tt.status)
			}
		})
	}

	t.Run("upstream code", func(t *testing.T) {
		reg := providers.NewRegistry(finalized(t, providers.Config{}), providers.Approx{}, discard())
		reg.Register(providers.OpenAI, &fakeModel{err: errors.New("boom")})
		_, err := reg.Call(context.Background(), providers.Request{Provider: providers.OpenAI, Model: "m", Prompt: "p"})
		if errcode.Of(err) != "UPSTREAM_ERROR" {
			t.Errorf("code = %q, want UPSTREAM_ERROR", errcode.Of(err))
		}
	})
}

func TestRegistryMock(t *testing.T) {
	tests := []struct {
		name string
		cfg  providers.Config
		req  providers.Request
		want string
	}{
		{
			name: "mock provider",
			req:  providers.Request{Provider: providers.Mock, Model: "echo", Prompt: "hi"},
			want: "[mock:echo] hi",
		},
		{
			name: "mock mode overrides provider",
			cfg:  providers.Config{Mock: true},
			req:  providers.Request{Provider: providers.OpenAI, Model: "gpt-4o", Prompt: "hi"},
			want: "[mock:gpt-4o] hi",
		},
		{
			name: "json response format",
			req: providers.Request{
				Provider: providers.Mock,
				Model:    "echo",
				Prompt:   "hi",
				Params:   providers.Params{ResponseFormat: "json"},
			},
			want: `{"model":"echo","echo":"hi"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := providers.NewRegistry(finalized(t, tt.cfg), providers.Approx{}, discard())
			res, err := reg.Call(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("call: %v", err)
			}
			if res.Output != tt.want {
				t.Errorf("output = %q, want %q", res.Output, tt.want)
			}
			if res.Usage.TotalTokens == 0 {
				t.Error("usage should be estimated")
			}
		})
	}
}

func TestApprox(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abc", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("가", 8), 2},
	}

	for _, tt := range tests {
		if got := (providers.Approx{}).Count("any", tt.text); got != tt.want {
			t.Errorf("Count(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestNewEmbedder(t *testing.T) {
	if e := providers.NewEmbedder(finalized(t, providers.Config{})); e != nil {
		t.Errorf("embedder without key = %v, want nil", e)
	}

	cfg := finalized(t, providers.Config{OpenAI: providers.Credentials{APIKey: "sk-test"}})
	if e := providers.NewEmbedder(cfg); e == nil {
		t.Error("embedder with key should not be nil")
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := finalized(t, providers.Config{})
		if cfg.Timeout != "60s" || cfg.TimeoutDuration().Seconds() != 60 {
			t.Errorf("timeout = %q", cfg.Timeout)
		}
		if cfg.EmbeddingModel != "text-embedding-3-small" {
			t.Errorf("embedding model = %q", cfg.EmbeddingModel)
		}
		if cfg.Ollama.BaseURL != "http://localhost:11434" {
			t.Errorf("ollama url = %q", cfg.Ollama.BaseURL)
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("TEST_PROVIDERS_TIMEOUT", "5s")
		t.Setenv("TEST_PROVIDERS_MOCK", "true")
		t.Setenv("TEST_OPENAI_KEY", "sk-env")

		cfg := providers.Config{}
		err := cfg.Finalize(&providers.Env{
			Timeout:   "TEST_PROVIDERS_TIMEOUT",
			Mock:      "TEST_PROVIDERS_MOCK",
			OpenAIKey: "TEST_OPENAI_KEY",
		})
		if err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if cfg.Timeout != "5s" || !cfg.Mock || cfg.OpenAI.APIKey != "sk-env" {
			t.Errorf("got %+v", cfg)
		}
	})

	t.Run("invalid timeout", func(t *testing.T) {
		cfg := providers.Config{Timeout: "soon"}
		if err := cfg.Finalize(nil); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("merge", func(t *testing.T) {
		base := finalized(t, providers.Config{OpenAI: providers.Credentials{APIKey: "sk-base"}})
		base.Merge(&providers.Config{Timeout: "10s", Gemini: providers.Credentials{APIKey: "g"}})
		if base.Timeout != "10s" || base.OpenAI.APIKey != "sk-base" || base.Gemini.APIKey != "g" {
			t.Errorf("merged = %+v", base)
		}
	})
}
