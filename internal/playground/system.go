package playground

import (
	"context"

	"github.com/google/uuid"

	"github.com/yumina0616/PromptLab-sub000/internal/aimodels"
	"github.com/yumina0616/PromptLab-sub000/internal/tips"
	"github.com/yumina0616/PromptLab-sub000/pkg/pagination"
)

// System defines the public contract for playground runs and history.
type System interface {
	Handler() *Handler

	// Run renders, executes, analyzes, and records a prompt for userID.
	Run(ctx context.Context, userID uuid.UUID, cmd RunCommand) (*RunResult, error)

	ListHistory(ctx context.Context, userID uuid.UUID, page pagination.PageRequest) (*pagination.PageResult[History], error)
	FindHistory(ctx context.Context, userID, id uuid.UUID) (*History, error)
	DeleteHistory(ctx context.Context, userID, id uuid.UUID) error
}

// ModelResolver looks up an active model from the catalog.
type ModelResolver interface {
	Resolve(ctx context.Context, id int) (*aimodels.Model, error)
}

// TipSuggester returns tips relevant to prompt text.
type TipSuggester interface {
	Suggest(ctx context.Context, cmd tips.SuggestCommand) ([]tips.Suggestion, error)
}
