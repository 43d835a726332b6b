package tips

import (
	"encoding/json"

	"github.com/yumina0616/PromptLab-sub000/pkg/query"
	"github.com/yumina0616/PromptLab-sub000/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "tips", "t").
	Project("id", "ID").
	Project("title", "Title").
	Project("body", "Body").
	ProjectExpr("to_json(t.tags)", "Tags").
	Project("storage_key", "StorageKey").
	ProjectExpr("(t.embedding IS NOT NULL)", "Embedded").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{Field: "CreatedAt", Descending: true}

func scanTip(s repository.Scanner) (Tip, error) {
	var (
		t    Tip
		tags []byte
	)
	err := s.Scan(
		&t.ID,
		&t.Title,
		&t.Body,
		&tags,
		&t.StorageKey,
		&t.Embedded,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return t, err
	}
	if err := json.Unmarshal(tags, &t.Tags); err != nil {
		return t, err
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t, nil
}
