// Package access decides whether a caller may view or mutate a prompt.
// Ownership short-circuits every check; public visibility and workspace
// sharing are independent grant paths for viewers.
package access

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/yumina0616/PromptLab-sub000/pkg/repository"
)

// Prompt visibility values stored on prompts.visibility.
const (
	Public   = "public"
	Private  = "private"
	Unlisted = "unlisted"
)

// System resolves prompt permissions for a caller.
type System interface {
	// EnsureOwner succeeds only when userID owns the prompt.
	EnsureOwner(ctx context.Context, userID, promptID uuid.UUID) error
	// EnsureViewer succeeds for the owner, for public prompts, and for members
	// of any workspace the prompt is shared into.
	EnsureViewer(ctx context.Context, userID, promptID uuid.UUID) error
}

// Viewable is the fast path of EnsureViewer. It reports whether the caller can
// view a prompt without consulting workspace shares.
func Viewable(userID, ownerID uuid.UUID, visibility string) bool {
	return userID == ownerID || visibility == Public
}

const sharedWithUser = `
	SELECT 1
	FROM workspace_prompts wp
	JOIN workspaces w ON w.id = wp.workspace_id
	LEFT JOIN workspace_members wm ON wm.workspace_id = wp.workspace_id AND wm.user_id = $2
	WHERE wp.prompt_id = $1
	  AND (wm.user_id IS NOT NULL OR (w.kind = 'personal' AND w.created_by = $2))`

type resolver struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates an access resolver over db.
func New(db *sql.DB, logger *slog.Logger) System {
	return &resolver{
		db:     db,
		logger: logger.With("system", "access"),
	}
}

func (r *resolver) EnsureOwner(ctx context.Context, userID, promptID uuid.UUID) error {
	ownerID, _, err := r.load(ctx, promptID)
	if err != nil {
		return err
	}
	if ownerID != userID {
		return ErrForbidden
	}
	return nil
}

func (r *resolver) EnsureViewer(ctx context.Context, userID, promptID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrUnauthorized
	}

	ownerID, visibility, err := r.load(ctx, promptID)
	if err != nil {
		return err
	}
	if Viewable(userID, ownerID, visibility) {
		return nil
	}

	shared, err := repository.Exists(ctx, r.db, sharedWithUser, promptID, userID)
	if err != nil {
		return err
	}
	if !shared {
		r.logger.Debug("prompt view denied", "prompt_id", promptID, "user_id", userID)
		return ErrForbidden
	}
	return nil
}

func (r *resolver) load(ctx context.Context, promptID uuid.UUID) (uuid.UUID, string, error) {
	var ownerID uuid.UUID
	var visibility string

	err := r.db.QueryRowContext(ctx,
		"SELECT owner_id, visibility FROM prompts WHERE id = $1",
		promptID,
	).Scan(&ownerID, &visibility)
	if err != nil {
		return uuid.Nil, "", repository.MapError(err, ErrPromptNotFound, err)
	}
	return ownerID, visibility, nil
}
