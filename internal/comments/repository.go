package comments

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/yumina0616/PromptLab-sub000/internal/access"
	"github.com/yumina0616/PromptLab-sub000/pkg/query"
	"github.com/yumina0616/PromptLab-sub000/pkg/repository"
)

type repo struct {
	db     *sql.DB
	access access.System
	logger *slog.Logger
}

// New creates a comments repository implementing the System interface.
func New(db *sql.DB, acc access.System, logger *slog.Logger) System {
	return &repo{
		db:     db,
		access: acc,
		logger: logger.With("system", "comments"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) List(ctx context.Context, userID, promptID, versionID uuid.UUID) ([]Comment, error) {
	if err := r.ensureVersion(ctx, userID, promptID, versionID); err != nil {
		return nil, err
	}

	q, args := query.NewBuilder(projection, defaultSort).
		WhereEquals("PromptID", promptID).
		WhereEquals("VersionID", versionID).
		Build()

	comments, err := repository.QueryMany(ctx, r.db, q, args, scanComment)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	return comments, nil
}

func (r *repo) Create(
	ctx context.Context,
	userID, promptID, versionID uuid.UUID,
	cmd CreateCommand,
) (*Comment, error) {
	if err := r.ensureVersion(ctx, userID, promptID, versionID); err != nil {
		return nil, err
	}

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Comment, error) {
		var id uuid.UUID
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO comments (prompt_id, version_id, user_id, body)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			promptID, versionID, userID, strings.TrimSpace(cmd.Body),
		).Scan(&id); err != nil {
			return Comment{}, fmt.Errorf("insert comment: %w", err)
		}

		q, args := query.NewBuilder(projection).BuildSingle("ID", id)
		return repository.QueryOne(ctx, tx, q, args, scanComment)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("comment created", "id", c.ID, "version_id", versionID, "user_id", userID)
	return &c, nil
}

func (r *repo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := repository.ExecExpectOne(ctx, r.db,
		"DELETE FROM comments WHERE id = $1 AND user_id = $2",
		id, userID,
	); err != nil {
		return repository.MapError(err, ErrNotFound, err)
	}

	r.logger.Info("comment deleted", "id", id, "user_id", userID)
	return nil
}

func (r *repo) ensureVersion(ctx context.Context, userID, promptID, versionID uuid.UUID) error {
	if err := r.access.EnsureViewer(ctx, userID, promptID); err != nil {
		return err
	}

	exists, err := repository.Exists(ctx, r.db, `
		SELECT 1 FROM prompt_versions v
		JOIN prompts p ON p.id = v.prompt_id
		WHERE v.id = $1 AND v.prompt_id = $2 AND (NOT v.is_draft OR p.owner_id = $3)`,
		versionID, promptID, userID,
	)
	if err != nil {
		return fmt.Errorf("check version: %w", err)
	}
	if !exists {
		return ErrVersionNotFound
	}
	return nil
}
