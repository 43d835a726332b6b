package workspaces

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/yumina0616/PromptLab-sub000/internal/access"
	"github.com/yumina0616/PromptLab-sub000/pkg/repository"
)

// maxSlugAttempts bounds the -2, -3, ... suffix search for derived slugs.
const maxSlugAttempts = 1000

// maxInsertAttempts bounds retries when a derived slug is claimed between
// resolve and insert.
const maxInsertAttempts = 10

var errPersonalExists = errors.New("personal workspace already exists")

type repo struct {
	db     *sql.DB
	access access.System
	logger *slog.Logger
}

// New creates a workspace repository implementing the System interface.
func New(db *sql.DB, acc access.System, logger *slog.Logger) System {
	return &repo{
		db:     db,
		access: acc,
		logger: logger.With("system", "workspaces"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Create(ctx context.Context, userID uuid.UUID, cmd CreateCommand) (*Workspace, error) {
	w, err := r.create(ctx, userID, KindTeam, cmd.Name, cmd.Slug, cmd.Description)
	if err != nil {
		return nil, err
	}

	r.logger.Info("workspace created", "id", w.ID, "slug", w.Slug, "created_by", userID)
	return w, nil
}

func (r *repo) EnsurePersonal(ctx context.Context, userID uuid.UUID, name string) (*Workspace, error) {
	existing, err := r.findPersonal(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find personal workspace: %w", err)
	}

	w, err := r.create(ctx, userID, KindPersonal, name, nil, "")
	if errors.Is(err, errPersonalExists) {
		// A concurrent call created it first.
		existing, err := r.findPersonal(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("find personal workspace: %w", err)
		}
		return existing, nil
	}
	if err != nil {
		return nil, err
	}

	r.logger.Info("personal workspace created", "id", w.ID, "slug", w.Slug, "user_id", userID)
	return w, nil
}

func (r *repo) findPersonal(ctx context.Context, userID uuid.UUID) (*Workspace, error) {
	w, err := repository.QueryOne(ctx, r.db,
		"SELECT "+workspaceColumns+" FROM workspaces w WHERE w.created_by = $1 AND w.kind = 'personal'",
		[]any{userID}, scanWorkspace,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *repo) create(
	ctx context.Context,
	userID uuid.UUID,
	kind Kind,
	name string,
	explicit *string,
	description string,
) (*Workspace, error) {
	for attempt := 1; ; attempt++ {
		slug, err := r.resolveSlug(ctx, name, explicit)
		if err != nil {
			return nil, err
		}

		w, err := r.insert(ctx, userID, kind, name, slug, description)
		if err == nil {
			return w, nil
		}

		constraint, unique := repository.UniqueViolation(err)
		switch {
		case unique && constraint == "idx_workspaces_personal":
			return nil, errPersonalExists
		case unique && constraint == "workspaces_slug_key":
			// A derived slug lost a race; the next resolve skips the winner.
			if explicit == nil && attempt < maxInsertAttempts {
				continue
			}
			return nil, ErrSlugTaken
		}
		return nil, err
	}
}

func (r *repo) insert(ctx context.Context, userID uuid.UUID, kind Kind, name, slug, description string) (*Workspace, error) {
	w, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Workspace, error) {
		w, err := repository.QueryOne(ctx, tx, `
			INSERT INTO workspaces (kind, name, slug, description, created_by)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, kind, name, slug, description, created_by, created_at, updated_at`,
			[]any{string(kind), name, slug, description, userID},
			scanWorkspace,
		)
		if err != nil {
			return w, err
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO workspace_members (workspace_id, user_id, role) VALUES ($1, $2, $3)",
			w.ID, userID, string(RoleAdmin),
		); err != nil {
			return w, fmt.Errorf("insert creator membership: %w", err)
		}
		return w, nil
	})
	if err != nil {
		return nil, err
	}

	admin := RoleAdmin
	w.Role = &admin
	return &w, nil
}

// resolveSlug checks an explicit slug for availability or derives a free one
// from name. The unique constraint remains the final arbiter on insert.
func (r *repo) resolveSlug(ctx context.Context, name string, explicit *string) (string, error) {
	if explicit != nil {
		slug := strings.TrimSpace(*explicit)
		if !ValidSlug(slug) {
			return "", ErrInvalidSlug
		}
		taken, err := r.slugTaken(ctx, slug)
		if err != nil {
			return "", err
		}
		if taken {
			return "", ErrSlugTaken
		}
		return slug, nil
	}

	base := slugBase(name)
	for n := 1; n <= maxSlugAttempts; n++ {
		candidate := Candidate(base, n)
		taken, err := r.slugTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrSlugTaken
}

func (r *repo) slugTaken(ctx context.Context, slug string) (bool, error) {
	taken, err := repository.Exists(ctx, r.db, "SELECT 1 FROM workspaces WHERE slug = $1", slug)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return taken, nil
}

func (r *repo) Find(ctx context.Context, userID, id uuid.UUID) (*Workspace, error) {
	role, err := r.requireMember(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	w, err := repository.QueryOne(ctx, r.db,
		"SELECT "+workspaceColumns+" FROM workspaces w WHERE w.id = $1",
		[]any{id}, scanWorkspace,
	)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, err)
	}
	w.Role = role
	return &w, nil
}

func (r *repo) ListMine(ctx context.Context, userID uuid.UUID) ([]Workspace, error) {
	q := `
		SELECT ` + workspaceColumns + `,
			CASE WHEN w.kind = 'personal' AND w.created_by = $1 THEN 'admin' ELSE wm.role END
		FROM workspaces w
		LEFT JOIN workspace_members wm ON wm.workspace_id = w.id AND wm.user_id = $1
		WHERE wm.user_id IS NOT NULL OR (w.kind = 'personal' AND w.created_by = $1)
		ORDER BY (w.kind = 'personal') DESC, w.created_at`

	ws, err := repository.QueryMany(ctx, r.db, q, []any{userID}, scanWorkspaceWithRole)
	if err != nil {
		return nil, fmt.Errorf("query workspaces: %w", err)
	}
	return ws, nil
}

func (r *repo) Update(ctx context.Context, userID, id uuid.UUID, cmd UpdateCommand) (*Workspace, error) {
	role, err := r.requireRole(ctx, id, userID, RoleAdmin)
	if err != nil {
		return nil, err
	}

	w, err := repository.QueryOne(ctx, r.db, `
		UPDATE workspaces w
		SET name = COALESCE($2, w.name),
		    description = COALESCE($3, w.description),
		    updated_at = NOW()
		WHERE w.id = $1
		RETURNING `+workspaceColumns,
		[]any{id, cmd.Name, cmd.Description},
		scanWorkspace,
	)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, err)
	}

	w.Role = role
	r.logger.Info("workspace updated", "id", id)
	return &w, nil
}

func (r *repo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := r.requireRole(ctx, id, userID, RoleAdmin); err != nil {
		return err
	}

	err := repository.ExecExpectOne(ctx, r.db,
		"DELETE FROM workspaces WHERE id = $1 AND kind = 'team'",
		id,
	)
	if err != nil {
		return repository.MapError(err, ErrPersonalWorkspace, err)
	}

	r.logger.Info("workspace deleted", "id", id)
	return nil
}

func (r *repo) MemberRole(ctx context.Context, workspaceID, userID uuid.UUID) (*Role, error) {
	var kind Kind
	var createdBy uuid.UUID
	var member *Role

	err := r.db.QueryRowContext(ctx, `
		SELECT w.kind, w.created_by, wm.role
		FROM workspaces w
		LEFT JOIN workspace_members wm ON wm.workspace_id = w.id AND wm.user_id = $2
		WHERE w.id = $1`,
		workspaceID, userID,
	).Scan(&kind, &createdBy, &member)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, err)
	}

	return EffectiveRole(kind, createdBy, userID, member), nil
}

// requireMember returns the caller's role, failing with ErrForbidden for
// non-members.
func (r *repo) requireMember(ctx context.Context, workspaceID, userID uuid.UUID) (*Role, error) {
	role, err := r.MemberRole(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, ErrForbidden
	}
	return role, nil
}

// requireRole returns the caller's role when it is one of allowed.
func (r *repo) requireRole(ctx context.Context, workspaceID, userID uuid.UUID, allowed ...Role) (*Role, error) {
	role, err := r.requireMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	for _, a := range allowed {
		if *role == a {
			return role, nil
		}
	}
	return nil, ErrForbidden
}
