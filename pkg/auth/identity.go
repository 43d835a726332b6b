// Package auth turns request credentials into an Identity carried on the request context.
// Identities are only ever produced by verifying a token; nothing is injected by default.
package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/yumina0616/PromptLab-sub000/pkg/errcode"
)

// Errors returned while authenticating a request.
var (
	ErrUnauthorized = errcode.New("UNAUTHORIZED", "authentication required")
	ErrInvalidToken = errcode.New("UNAUTHORIZED", "invalid or expired credential")
	ErrAdminOnly    = errcode.New("ADMIN_ONLY", "administrator privileges required")
)

// Identity is the verified caller of a request.
type Identity struct {
	UserID  uuid.UUID `json:"user_id"`
	IsAdmin bool      `json:"is_admin"`
}

type contextKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity attached to ctx, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// UserID returns the caller's id or uuid.Nil for anonymous requests.
func UserID(ctx context.Context) uuid.UUID {
	id, _ := FromContext(ctx)
	return id.UserID
}

// IsAdmin reports whether the caller is an authenticated administrator.
func IsAdmin(ctx context.Context) bool {
	id, ok := FromContext(ctx)
	return ok && id.IsAdmin
}
