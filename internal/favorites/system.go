package favorites

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for starring versions.
type System interface {
	Handler() *Handler

	Add(ctx context.Context, userID, promptID, versionID uuid.UUID) (*Favorite, error)
	Remove(ctx context.Context, userID, promptID, versionID uuid.UUID) error
	// Count returns how many users starred the version.
	Count(ctx context.Context, versionID uuid.UUID) (int, error)
}
