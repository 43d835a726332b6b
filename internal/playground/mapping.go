package playground

import (
	"encoding/json"

	"github.com/yumina0616/PromptLab-sub000/pkg/query"
	"github.com/yumina0616/PromptLab-sub000/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "playground_history", "h").
	Project("id", "ID").
	Project("user_id", "UserID").
	Project("ai_model_id", "AIModelID").
	Project("prompt_id", "PromptID").
	Project("prompt_version_id", "PromptVersionID").
	Project("prompt_text", "PromptText").
	Project("model_params", "ModelParams").
	Project("output", "Output").
	Project("usage", "Usage").
	Project("analyzer", "Analyzer").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{Field: "CreatedAt", Descending: true}

func scanHistory(s repository.Scanner) (History, error) {
	var (
		h                       History
		params, usage, analyzer []byte
	)
	err := s.Scan(
		&h.ID,
		&h.UserID,
		&h.AIModelID,
		&h.PromptID,
		&h.PromptVersionID,
		&h.PromptText,
		&params,
		&h.Output,
		&usage,
		&analyzer,
		&h.CreatedAt,
	)
	if err != nil {
		return h, err
	}
	if err := json.Unmarshal(usage, &h.Usage); err != nil {
		return h, err
	}
	h.ModelParams = json.RawMessage(params)
	h.Analyzer = json.RawMessage(analyzer)
	return h, nil
}
