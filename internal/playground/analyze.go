package playground

import (
	"fmt"
	"strings"

	"github.com/yumina0616/PromptLab-sub000/pkg/formatting"
	"github.com/yumina0616/PromptLab-sub000/pkg/providers"
)

// Analyzer finding codes.
const (
	FindingTooShort       = "TOO_SHORT"
	FindingTooLong        = "TOO_LONG"
	FindingMissingVars    = "MISSING_VARIABLES"
	FindingJSONNotAsked   = "JSON_NOT_REQUESTED"
	FindingNoOutputFormat = "NO_OUTPUT_FORMAT"
	FindingMaxTokensLow   = "MAX_TOKENS_LOW"
)

const (
	minWords       = 5
	maxPromptToken = 8000
	findingPenalty = 20
)

var formatHints = []string{
	"json", "list", "table", "bullet", "format", "markdown", "yaml", "csv",
	"sentence", "paragraph", "words", "steps",
}

// Analyze inspects prompt text before it is sent to model. Token counts come
// from tokenizer; the score starts at 100 and drops per finding.
func Analyze(text string, params ModelParams, model string, tokenizer providers.Tokenizer) Analysis {
	_, missing := formatting.Render(text, params.Variables)
	lower := strings.ToLower(text)

	a := Analysis{
		Placeholders:     formatting.Placeholders(text),
		MissingVariables: missing,
		PromptTokens:     tokenizer.Count(model, text),
		Characters:       len([]rune(text)),
		Words:            len(strings.Fields(text)),
		Findings:         []Finding{},
	}
	if a.Placeholders == nil {
		a.Placeholders = []string{}
	}
	if a.MissingVariables == nil {
		a.MissingVariables = []string{}
	}

	add := func(code, msg string) {
		a.Findings = append(a.Findings, Finding{Code: code, Message: msg})
	}

	if a.Words < minWords {
		add(FindingTooShort, "prompt is very short; describe the task, audience, and expected output")
	}
	if a.PromptTokens > maxPromptToken {
		add(FindingTooLong, fmt.Sprintf("prompt uses %d tokens; consider trimming context", a.PromptTokens))
	}
	if len(missing) > 0 {
		add(FindingMissingVars, "no value for: "+strings.Join(missing, ", "))
	}
	if params.JSONMode() && !strings.Contains(lower, "json") {
		add(FindingJSONNotAsked, "response_format is json but the prompt never asks for JSON")
	}
	if !params.JSONMode() && !containsAny(lower, formatHints) {
		add(FindingNoOutputFormat, "prompt does not say what shape the answer should take")
	}
	if params.MaxTokens != nil && *params.MaxTokens > 0 && *params.MaxTokens < a.PromptTokens/4 {
		add(FindingMaxTokensLow, "max_token is small relative to the prompt; output may be cut off")
	}

	a.Score = max(0, 100-findingPenalty*len(a.Findings))
	return a
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
