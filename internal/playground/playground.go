// Package playground executes prompts against configured models, analyzes
// the prompt text, and keeps a per-user history of runs.
package playground

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/yumina0616/PromptLab-sub000/internal/tips"
	"github.com/yumina0616/PromptLab-sub000/pkg/providers"
)

// Source optionally ties a run to a stored prompt or version.
type Source struct {
	PromptID        *uuid.UUID `json:"prompt_id,omitempty"`
	PromptVersionID *uuid.UUID `json:"prompt_version_id,omitempty"`
}

// ModelParams are the generation parameters of a run plus the values
// substituted into {{placeholders}} before the call.
type ModelParams struct {
	providers.Params
	Variables map[string]string `json:"variables,omitempty"`
}

// RunCommand is the JSON body of a playground run.
type RunCommand struct {
	ModelID     int         `json:"model_id" validate:"required,gt=0"`
	PromptText  string      `json:"prompt_text" validate:"required,max=100000"`
	ModelParams ModelParams `json:"model_params"`
	Source      *Source     `json:"source"`
}

// RunResult is returned from a run. Parsed is set when JSON output was
// requested and the output could be decoded.
type RunResult struct {
	Output    string          `json:"output"`
	Usage     providers.Usage `json:"usage"`
	Analyzer  Analysis        `json:"analyzer"`
	HistoryID uuid.UUID       `json:"history_id"`
	Parsed    any             `json:"parsed,omitempty"`
}

// History is a stored playground run.
type History struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	AIModelID       int             `json:"ai_model_id"`
	PromptID        *uuid.UUID      `json:"prompt_id"`
	PromptVersionID *uuid.UUID      `json:"prompt_version_id"`
	PromptText      string          `json:"prompt_text"`
	ModelParams     json.RawMessage `json:"model_params"`
	Output          string          `json:"output"`
	Usage           providers.Usage `json:"usage"`
	Analyzer        json.RawMessage `json:"analyzer"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Finding is a single analyzer observation about a prompt.
type Finding struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Analysis summarizes a prompt before it is sent.
type Analysis struct {
	Score            int               `json:"score"`
	Placeholders     []string          `json:"placeholders"`
	MissingVariables []string          `json:"missing_variables"`
	PromptTokens     int               `json:"prompt_tokens"`
	Characters       int               `json:"characters"`
	Words            int               `json:"words"`
	Findings         []Finding         `json:"findings"`
	Tips             []tips.Suggestion `json:"tips"`
}
