package workspaces

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/yumina0616/PromptLab-sub000/pkg/query"
	"github.com/yumina0616/PromptLab-sub000/pkg/repository"
)

var shareSort = query.SortField{Field: "AddedAt", Descending: true}

// SharePrompt attaches a prompt to a workspace and forces the prompt private
// in the same transaction. The sharer must own the prompt and hold an admin
// or editor role in the workspace.
func (r *repo) SharePrompt(
	ctx context.Context,
	workspaceID, promptID, sharerID uuid.UUID,
	role ShareRole,
) (*Share, error) {
	if role == "" {
		role = ShareViewer
	}

	member, err := r.requireMember(ctx, workspaceID, sharerID)
	if err != nil {
		return nil, err
	}
	if !member.CanShare() {
		return nil, ErrForbidden
	}

	if err := r.access.EnsureOwner(ctx, sharerID, promptID); err != nil {
		return nil, err
	}

	share, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Share, error) {
		sh, err := repository.QueryOne(ctx, tx, `
			INSERT INTO workspace_prompts (workspace_id, prompt_id, role, added_by)
			VALUES ($1, $2, $3, $4)
			RETURNING workspace_id, prompt_id, role, added_by, added_at`,
			[]any{workspaceID, promptID, string(role), sharerID},
			scanShare,
		)
		if err != nil {
			return sh, repository.MapError(err, ErrShareNotFound, ErrAlreadyShared)
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE prompts SET visibility = 'private', updated_at = NOW() WHERE id = $1",
			promptID,
		); err != nil {
			return sh, fmt.Errorf("force prompt private: %w", err)
		}
		return sh, nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("prompt shared", "workspace_id", workspaceID, "prompt_id", promptID, "role", role)
	return &share, nil
}

func (r *repo) UpdateShare(
	ctx context.Context,
	actorID, workspaceID, promptID uuid.UUID,
	role ShareRole,
) (*Share, error) {
	if err := r.requireSharer(ctx, workspaceID, actorID); err != nil {
		return nil, err
	}

	sh, err := repository.QueryOne(ctx, r.db, `
		UPDATE workspace_prompts SET role = $3
		WHERE workspace_id = $1 AND prompt_id = $2
		RETURNING workspace_id, prompt_id, role, added_by, added_at`,
		[]any{workspaceID, promptID, string(role)},
		scanShare,
	)
	if err != nil {
		return nil, repository.MapError(err, ErrShareNotFound, err)
	}

	r.logger.Info("share updated", "workspace_id", workspaceID, "prompt_id", promptID, "role", role)
	return &sh, nil
}

func (r *repo) Unshare(ctx context.Context, actorID, workspaceID, promptID uuid.UUID) error {
	if err := r.requireSharer(ctx, workspaceID, actorID); err != nil {
		return err
	}

	if err := repository.ExecExpectOne(ctx, r.db,
		"DELETE FROM workspace_prompts WHERE workspace_id = $1 AND prompt_id = $2",
		workspaceID, promptID,
	); err != nil {
		return repository.MapError(err, ErrShareNotFound, err)
	}

	r.logger.Info("prompt unshared", "workspace_id", workspaceID, "prompt_id", promptID)
	return nil
}

func (r *repo) ListShared(ctx context.Context, workspaceID, userID uuid.UUID) ([]SharedPrompt, error) {
	if _, err := r.requireMember(ctx, workspaceID, userID); err != nil {
		return nil, err
	}

	q, args := query.NewBuilder(shareProjection, shareSort).
		WhereEquals("WorkspaceID", workspaceID).
		Build()

	shared, err := repository.QueryMany(ctx, r.db, q, args, scanSharedPrompt)
	if err != nil {
		return nil, fmt.Errorf("query shared prompts: %w", err)
	}
	return shared, nil
}

func (r *repo) requireSharer(ctx context.Context, workspaceID, actorID uuid.UUID) error {
	_, err := r.requireRole(ctx, workspaceID, actorID, RoleAdmin, RoleEditor)
	return err
}
