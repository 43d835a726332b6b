package users

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for account operations.
type System interface {
	Handler() *Handler

	Register(ctx context.Context, cmd RegisterCommand) (*Session, error)
	Login(ctx context.Context, cmd LoginCommand) (*Session, error)
	LoginOIDC(ctx context.Context, rawIDToken string) (*Session, error)

	Find(ctx context.Context, id uuid.UUID) (*User, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
