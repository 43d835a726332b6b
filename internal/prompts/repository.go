package prompts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yumina0616/PromptLab-sub000/internal/access"
	"github.com/yumina0616/PromptLab-sub000/pkg/pagination"
	"github.com/yumina0616/PromptLab-sub000/pkg/query"
	"github.com/yumina0616/PromptLab-sub000/pkg/repository"
)

type repo struct {
	db         *sql.DB
	access     access.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a prompt repository implementing the System interface.
func New(
	db *sql.DB,
	acc access.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		access:     acc,
		logger:     logger.With("system", "prompts"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(ctx context.Context, userID uuid.UUID, q Query) (*pagination.PageResult[Item], error) {
	if q.Mine && userID == uuid.Nil {
		return nil, access.ErrUnauthorized
	}

	qb := q.Builder(userID)

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count prompts: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(q.Page.Page, q.Page.Limit)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanItem)
	if err != nil {
		return nil, fmt.Errorf("query prompts: %w", err)
	}

	if err := r.hydrate(ctx, items); err != nil {
		return nil, err
	}

	result := pagination.NewPageResult(items, total, q.Page.Page, q.Page.Limit)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, userID, id uuid.UUID) (*Item, error) {
	if err := r.access.EnsureViewer(ctx, userID, id); err != nil {
		return nil, err
	}

	q, args := query.NewBuilder(projection).BuildSingle("ID", id)
	it, err := repository.QueryOne(ctx, r.db, q, args, scanItem)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, err)
	}

	items := []Item{it}
	if err := r.hydrate(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (r *repo) Create(ctx context.Context, userID uuid.UUID, cmd CreateCommand) (*CreateResult, error) {
	if cmd.ModelSetting == nil {
		return nil, ErrModelSettingRequired
	}
	if cmd.Visibility == "" {
		cmd.Visibility = VisibilityPublic
	}

	result, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (CreateResult, error) {
		var res CreateResult
		err := tx.QueryRowContext(ctx, `
			INSERT INTO prompts (owner_id, name, description, visibility)
			VALUES ($1, $2, $3, $4)
			RETURNING id, owner_id`,
			userID, cmd.Name, cmd.Description, string(cmd.Visibility),
		).Scan(&res.ID, &res.OwnerID)
		if err != nil {
			return res, fmt.Errorf("insert prompt: %w", err)
		}

		categoryID, err := resolveCategory(ctx, tx, cmd.CategoryCode)
		if err != nil {
			return res, err
		}

		versionID, err := insertVersion(ctx, tx, res.ID, 1, userID, categoryID, cmd.Content, cmd.CommitMessage, cmd.IsDraft)
		if err != nil {
			return res, err
		}

		if err := insertModelSetting(ctx, tx, versionID, cmd.ModelSetting.withDefaults()); err != nil {
			return res, err
		}

		if err := linkTags(ctx, tx, res.ID, NormalizeTags(cmd.Tags)); err != nil {
			return res, err
		}

		if !cmd.IsDraft {
			if err := promote(ctx, tx, res.ID, versionID); err != nil {
				return res, err
			}
			res.LatestVersionID = &versionID
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("prompt created", "id", result.ID, "owner_id", userID, "draft", cmd.IsDraft)
	return &result, nil
}

func (r *repo) Update(ctx context.Context, userID, id uuid.UUID, cmd UpdateCommand) (*Prompt, error) {
	if err := r.access.EnsureOwner(ctx, userID, id); err != nil {
		return nil, err
	}

	sets, args := cmd.assignments()

	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Prompt, error) {
		if cmd.Visibility != nil && *cmd.Visibility != VisibilityPrivate {
			shared, err := repository.Exists(ctx, tx,
				"SELECT 1 FROM workspace_prompts WHERE prompt_id = $1", id,
			)
			if err != nil {
				return Prompt{}, fmt.Errorf("check workspace shares: %w", err)
			}
			if shared {
				return Prompt{}, ErrSharedPrompt
			}
		}

		q := "UPDATE prompts SET " + strings.Join(sets, ", ") +
			fmt.Sprintf(" WHERE id = $%d RETURNING %s", len(args)+1, promptColumns)

		p, err := repository.QueryOne(ctx, tx, q, append(args, id), scanPrompt)
		if err != nil {
			return p, repository.MapError(err, ErrNotFound, err)
		}

		if cmd.Tags != nil {
			if _, err := tx.ExecContext(ctx, "DELETE FROM prompt_tags WHERE prompt_id = $1", id); err != nil {
				return p, fmt.Errorf("clear tags: %w", err)
			}
			if err := linkTags(ctx, tx, id, NormalizeTags(*cmd.Tags)); err != nil {
				return p, err
			}
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("prompt updated", "id", id)
	return &p, nil
}

// assignments builds the SET list from present fields. updated_at is always
// touched so an empty patch still returns the current row.
func (c UpdateCommand) assignments() ([]string, []any) {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 3)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if c.Name != nil {
		add("name", *c.Name)
	}
	if c.Description != nil {
		add("description", *c.Description)
	}
	if c.Visibility != nil {
		add("visibility", string(*c.Visibility))
	}
	sets = append(sets, "updated_at = NOW()")
	return sets, args
}

func (r *repo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := r.access.EnsureOwner(ctx, userID, id); err != nil {
		return err
	}

	if err := repository.ExecExpectOne(ctx, r.db, "DELETE FROM prompts WHERE id = $1", id); err != nil {
		return repository.MapError(err, ErrNotFound, err)
	}

	r.logger.Info("prompt deleted", "id", id)
	return nil
}

func (r *repo) Categories(ctx context.Context) ([]Category, error) {
	return repository.QueryMany(ctx, r.db,
		"SELECT id, code, name FROM categories ORDER BY id",
		nil, scanCategory,
	)
}

// hydrate attaches tag names and the latest version summary to items.
func (r *repo) hydrate(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID.String()
	}

	var (
		tags     map[uuid.UUID][]string
		versions map[uuid.UUID]VersionSummary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tags, err = r.tagsFor(gctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		versions, err = r.latestFor(gctx, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	for i := range items {
		items[i].Tags = tags[items[i].ID]
		if items[i].Tags == nil {
			items[i].Tags = []string{}
		}
		if v, ok := versions[items[i].ID]; ok {
			items[i].LatestVersion = &v
		}
	}
	return nil
}

func (r *repo) tagsFor(ctx context.Context, ids []string) (map[uuid.UUID][]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT pt.prompt_id, t.name
		FROM prompt_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.prompt_id = ANY($1::uuid[])
		ORDER BY t.name`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]string)
	for rows.Next() {
		var id uuid.UUID
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = append(out[id], name)
	}
	return out, rows.Err()
}

// latestFor prefers the promoted latest version and otherwise falls back to
// the highest version number, drafts included.
func (r *repo) latestFor(ctx context.Context, ids []string) (map[uuid.UUID]VersionSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT ON (v.prompt_id)
			v.prompt_id, v.id, v.version_number, v.commit_message, v.is_draft, v.created_at
		FROM prompt_versions v
		JOIN prompts p ON p.id = v.prompt_id
		WHERE v.prompt_id = ANY($1::uuid[])
		ORDER BY v.prompt_id, (v.id = p.latest_version_id) IS TRUE DESC, v.version_number DESC`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("query latest versions: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]VersionSummary)
	for rows.Next() {
		var promptID uuid.UUID
		var v VersionSummary
		if err := rows.Scan(&promptID, &v.ID, &v.VersionNumber, &v.CommitMessage, &v.IsDraft, &v.CreatedAt); err != nil {
			return nil, err
		}
		out[promptID] = v
	}
	return out, rows.Err()
}

func resolveCategory(ctx context.Context, tx *sql.Tx, code string) (*int, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}

	var id int
	err := tx.QueryRowContext(ctx, "SELECT id FROM categories WHERE code = $1", code).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, code)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve category: %w", err)
	}
	return &id, nil
}

func linkTags(ctx context.Context, tx *sql.Tx, promptID uuid.UUID, tags []string) error {
	for _, name := range tags {
		var tagID int
		err := tx.QueryRowContext(ctx, `
			INSERT INTO tags (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`,
			name,
		).Scan(&tagID)
		if err != nil {
			return fmt.Errorf("upsert tag %q: %w", name, err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO prompt_tags (prompt_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`,
			promptID, tagID,
		); err != nil {
			return fmt.Errorf("link tag %q: %w", name, err)
		}
	}
	return nil
}

func promote(ctx context.Context, tx *sql.Tx, promptID, versionID uuid.UUID) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE prompts SET latest_version_id = $2, updated_at = NOW() WHERE id = $1",
		promptID, versionID,
	)
	if err != nil {
		return fmt.Errorf("promote version: %w", err)
	}
	return nil
}
