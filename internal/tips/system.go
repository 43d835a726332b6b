package tips

import (
	"context"

	"github.com/google/uuid"

	"github.com/yumina0616/PromptLab-sub000/pkg/pagination"
)

// System defines the public contract for tip management and retrieval.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(ctx context.Context, q Query) (*pagination.PageResult[Tip], error)
	Find(ctx context.Context, id uuid.UUID) (*Tip, error)
	Create(ctx context.Context, cmd CreateCommand) (*Tip, error)
	Upload(ctx context.Context, cmd UploadCommand) (*Tip, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Source opens the uploaded document a tip was created from.
	Source(ctx context.Context, id uuid.UUID) (*Document, error)

	// Suggest returns the tips closest to text. Semantic matches are used
	// when an embedder is configured; keyword matches fill in otherwise.
	Suggest(ctx context.Context, cmd SuggestCommand) ([]Suggestion, error)
}
