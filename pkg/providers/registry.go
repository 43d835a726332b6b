package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Factory builds a langchaingo model for a provider.
type Factory func(ctx context.Context, cfg *Config) (llms.Model, error)

// Registry is a Caller that dispatches to langchaingo models by provider name.
// Models are built on first use and reused afterwards.
type Registry struct {
	cfg       *Config
	logger    *slog.Logger
	tokens    Tokenizer
	factories map[string]Factory

	mu     sync.Mutex
	models map[string]llms.Model
}

// NewRegistry creates a Registry with factories for every supported provider.
func NewRegistry(cfg *Config, tokens Tokenizer, logger *slog.Logger) *Registry {
	return &Registry{
		cfg:    cfg,
		logger: logger.With("system", "providers"),
		tokens: tokens,
		factories: map[string]Factory{
			OpenAI:    newOpenAI,
			Gemini:    newGemini,
			Anthropic: newAnthropic,
			Ollama:    newOllama,
		},
		models: make(map[string]llms.Model),
	}
}

// Register installs a ready model for a provider, replacing its factory.
func (r *Registry) Register(provider string, model llms.Model) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[provider] = model
}

// Call executes req with the configured timeout. When mock mode is enabled,
// or the provider is "mock", the prompt is echoed without a network call.
func (r *Registry) Call(ctx context.Context, req Request) (*Result, error) {
	if r.cfg.Mock || req.Provider == Mock {
		return r.result(req, mockOutput(req)), nil
	}

	model, err := r.model(ctx, req.Provider)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, r.cfg.TimeoutDuration())
	defer cancel()

	start := time.Now()
	output, err := llms.GenerateFromSinglePrompt(callCtx, model, req.Prompt, callOptions(req)...)
	if err != nil {
		r.logger.Warn("provider call failed",
			"provider", req.Provider,
			"model", req.Model,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %s: %v", ErrUpstream, req.Provider, err)
	}

	r.logger.Info("provider call completed",
		"provider", req.Provider,
		"model", req.Model,
		"duration", time.Since(start),
	)

	return r.result(req, output), nil
}

func (r *Registry) result(req Request, output string) *Result {
	prompt := r.tokens.Count(req.Model, req.Prompt)
	completion := r.tokens.Count(req.Model, output)
	return &Result{
		Output: output,
		Usage: Usage{
			PromptTokens:     prompt,
			CompletionTokens: completion,
			TotalTokens:      prompt + completion,
		},
	}
}

func (r *Registry) model(ctx context.Context, provider string) (llms.Model, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.models[provider]; ok {
		return m, nil
	}

	factory, ok := r.factories[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}

	m, err := factory(ctx, r.cfg)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: create %s client: %v", ErrUpstream, provider, err)
	}

	r.models[provider] = m
	return m, nil
}

func callOptions(req Request) []llms.CallOption {
	opts := []llms.CallOption{llms.WithModel(req.Model)}
	p := req.Params

	if p.Temperature != nil {
		opts = append(opts, llms.WithTemperature(*p.Temperature))
	}
	if p.MaxTokens != nil {
		opts = append(opts, llms.WithMaxTokens(*p.MaxTokens))
	}
	if p.TopP != nil {
		opts = append(opts, llms.WithTopP(*p.TopP))
	}
	if p.FrequencyPenalty != nil {
		opts = append(opts, llms.WithFrequencyPenalty(*p.FrequencyPenalty))
	}
	if p.PresencePenalty != nil {
		opts = append(opts, llms.WithPresencePenalty(*p.PresencePenalty))
	}
	if p.JSONMode() {
		opts = append(opts, llms.WithJSONMode())
	}

	return opts
}

func newOpenAI(_ context.Context, cfg *Config) (llms.Model, error) {
	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("%w: openai", ErrNotConfigured)
	}
	opts := []openai.Option{openai.WithToken(cfg.OpenAI.APIKey)}
	if cfg.OpenAI.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.OpenAI.BaseURL))
	}
	return openai.New(opts...)
}

func newGemini(ctx context.Context, cfg *Config) (llms.Model, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini", ErrNotConfigured)
	}
	return googleai.New(ctx, googleai.WithAPIKey(cfg.Gemini.APIKey))
}

func newAnthropic(_ context.Context, cfg *Config) (llms.Model, error) {
	if cfg.Anthropic.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic", ErrNotConfigured)
	}
	return anthropic.New(anthropic.WithToken(cfg.Anthropic.APIKey))
}

func newOllama(_ context.Context, cfg *Config) (llms.Model, error) {
	return ollama.New(ollama.WithServerURL(cfg.Ollama.BaseURL))
}
