package comments

import (
	"github.com/yumina0616/PromptLab-sub000/pkg/query"
	"github.com/yumina0616/PromptLab-sub000/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "comments", "c").
	Join("JOIN public.users u ON u.id = c.user_id").
	Project("id", "ID").
	Project("prompt_id", "PromptID").
	Project("version_id", "VersionID").
	Project("user_id", "UserID").
	ProjectExpr("u.userid", "UserHandle").
	ProjectExpr("u.display_name", "DisplayName").
	Project("body", "Body").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{Field: "CreatedAt"}

func scanComment(s repository.Scanner) (Comment, error) {
	var c Comment
	err := s.Scan(
		&c.ID,
		&c.PromptID,
		&c.VersionID,
		&c.UserID,
		&c.UserHandle,
		&c.DisplayName,
		&c.Body,
		&c.CreatedAt,
	)
	return c, err
}
