// Package aimodels exposes the catalog of AI models prompts can target and
// the admin-only model test call.
package aimodels

import "github.com/yumina0616/PromptLab-sub000/pkg/providers"

// Model is a row of the ai_models catalog.
type Model struct {
	ID          int    `json:"id"`
	Provider    string `json:"provider"`
	ModelKey    string `json:"model_key"`
	DisplayName string `json:"display_name"`
	Active      bool   `json:"active"`
}

// Request builds a provider request for prompt against m.
func (m *Model) Request(prompt string, params providers.Params) providers.Request {
	return providers.Request{
		Provider: m.Provider,
		Model:    m.ModelKey,
		Prompt:   prompt,
		Params:   params,
	}
}

// TestCommand runs a single prompt against a model.
type TestCommand struct {
	ModelID    int              `json:"model_id" validate:"required,gt=0"`
	PromptText string           `json:"prompt_text" validate:"required,max=20000"`
	Params     providers.Params `json:"params"`
}
