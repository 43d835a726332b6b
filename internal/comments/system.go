package comments

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for version comments.
type System interface {
	Handler() *Handler

	List(ctx context.Context, userID, promptID, versionID uuid.UUID) ([]Comment, error)
	Create(ctx context.Context, userID, promptID, versionID uuid.UUID, cmd CreateCommand) (*Comment, error)
	// Delete removes a comment authored by userID.
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
