package aimodels

import (
	"context"

	"github.com/google/uuid"

	"github.com/yumina0616/PromptLab-sub000/pkg/providers"
)

// System defines the public contract for the model catalog.
type System interface {
	Handler() *Handler

	List(ctx context.Context) ([]Model, error)
	// Resolve returns an active model by id.
	Resolve(ctx context.Context, id int) (*Model, error)
	Test(ctx context.Context, userID uuid.UUID, cmd TestCommand) (*providers.Result, error)
}
