// Package providers executes prompts against upstream LLM providers and
// estimates token usage for the results.
package providers

import (
	"context"
	"errors"
	"net/http"
)

// Provider names recognized by the registry.
const (
	OpenAI    = "openai"
	Gemini    = "gemini"
	Anthropic = "anthropic"
	Ollama    = "ollama"
	Mock      = "mock"
)

// Params are the tunable generation parameters of a call. Nil fields use
// the provider's defaults.
type Params struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	MaxTokens        *int     `json:"max_token,omitempty"`
	TopP             *float64 `json:"top_p,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty"`
	ResponseFormat   string   `json:"response_format,omitempty"`
}

// JSONMode reports whether the caller asked for a JSON response.
func (p Params) JSONMode() bool {
	return p.ResponseFormat == "json"
}

// Request describes a single prompt execution.
type Request struct {
	Provider string
	Model    string
	Prompt   string
	Params   Params
}

// Usage reports token counts for a call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Result is the output of a provider call.
type Result struct {
	Output string `json:"output"`
	Usage  Usage  `json:"usage"`
}

// Caller executes prompts.
type Caller interface {
	Call(ctx context.Context, req Request) (*Result, error)
}

// Embedder converts text into a vector for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// MapHTTPStatus maps provider errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrUnknownProvider) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrUpstream) || errors.Is(err, ErrNotConfigured) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
