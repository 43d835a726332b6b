package favorites

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/yumina0616/PromptLab-sub000/internal/access"
	"github.com/yumina0616/PromptLab-sub000/pkg/repository"
)

type repo struct {
	db     *sql.DB
	access access.System
	logger *slog.Logger
}

// New creates a favorites repository implementing the System interface.
func New(db *sql.DB, acc access.System, logger *slog.Logger) System {
	return &repo{
		db:     db,
		access: acc,
		logger: logger.With("system", "favorites"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Add(ctx context.Context, userID, promptID, versionID uuid.UUID) (*Favorite, error) {
	if err := r.ensureVersion(ctx, userID, promptID, versionID); err != nil {
		return nil, err
	}

	fav, err := repository.QueryOne(ctx, r.db, `
		INSERT INTO favorites (user_id, prompt_version_id)
		VALUES ($1, $2)
		RETURNING id, user_id, prompt_version_id, created_at`,
		[]any{userID, versionID},
		scanFavorite,
	)
	if err != nil {
		return nil, repository.MapError(err, ErrVersionNotFound, ErrAlreadyStarred)
	}

	r.logger.Info("version starred", "version_id", versionID, "user_id", userID)
	return &fav, nil
}

func (r *repo) Remove(ctx context.Context, userID, promptID, versionID uuid.UUID) error {
	if err := r.ensureVersion(ctx, userID, promptID, versionID); err != nil {
		return err
	}

	if err := repository.ExecExpectOne(ctx, r.db,
		"DELETE FROM favorites WHERE user_id = $1 AND prompt_version_id = $2",
		userID, versionID,
	); err != nil {
		return repository.MapError(err, ErrNotStarred, err)
	}

	r.logger.Info("version unstarred", "version_id", versionID, "user_id", userID)
	return nil
}

func (r *repo) Count(ctx context.Context, versionID uuid.UUID) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM favorites WHERE prompt_version_id = $1",
		versionID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count favorites: %w", err)
	}
	return n, nil
}

// ensureVersion checks the caller may view the prompt and that the version
// belongs to it. Drafts are only visible to the prompt owner.
func (r *repo) ensureVersion(ctx context.Context, userID, promptID, versionID uuid.UUID) error {
	if err := r.access.EnsureViewer(ctx, userID, promptID); err != nil {
		return err
	}

	var draft bool
	var ownerID uuid.UUID
	err := r.db.QueryRowContext(ctx, `
		SELECT v.is_draft, p.owner_id
		FROM prompt_versions v
		JOIN prompts p ON p.id = v.prompt_id
		WHERE v.id = $1 AND v.prompt_id = $2`,
		versionID, promptID,
	).Scan(&draft, &ownerID)
	if err != nil {
		return repository.MapError(err, ErrVersionNotFound, err)
	}
	if draft && ownerID != userID {
		return ErrVersionNotFound
	}
	return nil
}

func scanFavorite(s repository.Scanner) (Favorite, error) {
	var f Favorite
	err := s.Scan(&f.ID, &f.UserID, &f.PromptVersionID, &f.CreatedAt)
	return f, err
}
