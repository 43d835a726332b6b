package prompts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/yumina0616/PromptLab-sub000/pkg/query"
	"github.com/yumina0616/PromptLab-sub000/pkg/repository"
)

var versionSort = query.SortField{Field: "VersionNumber", Descending: true}

func (r *repo) ListVersions(ctx context.Context, userID, promptID uuid.UUID) ([]Version, error) {
	owner, err := r.viewAs(ctx, userID, promptID)
	if err != nil {
		return nil, err
	}

	qb := query.NewBuilder(versionProjection, versionSort).WhereEquals("PromptID", promptID)
	if !owner {
		qb.WhereEquals("IsDraft", false)
	}

	q, args := qb.Build()
	versions, err := repository.QueryMany(ctx, r.db, q, args, scanVersion)
	if err != nil {
		return nil, fmt.Errorf("query versions: %w", err)
	}
	return versions, nil
}

func (r *repo) FindVersion(ctx context.Context, userID, promptID, versionID uuid.UUID) (*Version, error) {
	owner, err := r.viewAs(ctx, userID, promptID)
	if err != nil {
		return nil, err
	}

	v, err := findVersion(ctx, r.db, promptID, versionID)
	if err != nil {
		return nil, err
	}
	if v.IsDraft && !owner {
		return nil, ErrVersionNotFound
	}
	return v, nil
}

func (r *repo) CreateVersion(ctx context.Context, userID, promptID uuid.UUID, cmd VersionCommand) (*Version, error) {
	if err := r.access.EnsureOwner(ctx, userID, promptID); err != nil {
		return nil, err
	}

	v, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Version, error) {
		if _, err := lockPrompt(ctx, tx, promptID); err != nil {
			return nil, err
		}

		var next int
		var previous *uuid.UUID
		err := tx.QueryRowContext(ctx, `
			SELECT COALESCE(MAX(version_number), 0) + 1,
			       (SELECT id FROM prompt_versions WHERE prompt_id = $1 ORDER BY version_number DESC LIMIT 1)
			FROM prompt_versions WHERE prompt_id = $1`,
			promptID,
		).Scan(&next, &previous)
		if err != nil {
			return nil, fmt.Errorf("next version number: %w", err)
		}

		categoryID, err := resolveCategory(ctx, tx, cmd.CategoryCode)
		if err != nil {
			return nil, err
		}

		versionID, err := insertVersion(ctx, tx, promptID, next, userID, categoryID, cmd.Content, cmd.CommitMessage, cmd.IsDraft)
		if err != nil {
			return nil, err
		}

		switch {
		case cmd.ModelSetting != nil:
			err = insertModelSetting(ctx, tx, versionID, cmd.ModelSetting.withDefaults())
		case previous != nil:
			err = copyModelSetting(ctx, tx, *previous, versionID)
		default:
			err = ErrModelSettingRequired
		}
		if err != nil {
			return nil, err
		}

		if !cmd.IsDraft {
			if err := promote(ctx, tx, promptID, versionID); err != nil {
				return nil, err
			}
		}

		return findVersion(ctx, tx, promptID, versionID)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("version created", "prompt_id", promptID, "version", v.VersionNumber, "draft", v.IsDraft)
	return v, nil
}

func (r *repo) UpdateVersion(
	ctx context.Context,
	userID, promptID, versionID uuid.UUID,
	cmd UpdateVersionCommand,
) (*Version, error) {
	if err := r.access.EnsureOwner(ctx, userID, promptID); err != nil {
		return nil, err
	}

	v, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Version, error) {
		latest, err := lockPrompt(ctx, tx, promptID)
		if err != nil {
			return nil, err
		}

		current, err := findVersion(ctx, tx, promptID, versionID)
		if err != nil {
			return nil, err
		}

		publish := current.IsDraft && cmd.IsDraft != nil && !*cmd.IsDraft
		if !current.IsDraft && cmd.IsDraft != nil && *cmd.IsDraft {
			return nil, ErrPublishedImmutable
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE prompt_versions
			SET commit_message = COALESCE($3, commit_message),
			    is_draft = COALESCE($4, is_draft),
			    revision = revision + 1,
			    updated_at = NOW()
			WHERE id = $1 AND prompt_id = $2`,
			versionID, promptID, cmd.CommitMessage, cmd.IsDraft,
		); err != nil {
			return nil, fmt.Errorf("update version: %w", err)
		}

		if publish {
			newer, err := newerThanLatest(ctx, tx, latest, current.VersionNumber)
			if err != nil {
				return nil, err
			}
			if newer {
				if err := promote(ctx, tx, promptID, versionID); err != nil {
					return nil, err
				}
			}
		}

		return findVersion(ctx, tx, promptID, versionID)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("version updated", "prompt_id", promptID, "version_id", versionID, "revision", v.Revision)
	return v, nil
}

func (r *repo) DeleteVersion(ctx context.Context, userID, promptID, versionID uuid.UUID) error {
	if err := r.access.EnsureOwner(ctx, userID, promptID); err != nil {
		return err
	}

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if _, err := lockPrompt(ctx, tx, promptID); err != nil {
			return struct{}{}, err
		}

		if err := repository.ExecExpectOne(ctx, tx,
			"DELETE FROM prompt_versions WHERE id = $1 AND prompt_id = $2",
			versionID, promptID,
		); err != nil {
			return struct{}{}, repository.MapError(err, ErrVersionNotFound, err)
		}

		// The FK clears latest_version_id when the latest version is deleted.
		if _, err := tx.ExecContext(ctx, `
			UPDATE prompts SET latest_version_id = (
				SELECT id FROM prompt_versions
				WHERE prompt_id = $1 AND NOT is_draft
				ORDER BY version_number DESC LIMIT 1
			), updated_at = NOW()
			WHERE id = $1 AND latest_version_id IS NULL`,
			promptID,
		); err != nil {
			return struct{}{}, fmt.Errorf("repoint latest version: %w", err)
		}
		return struct{}{}, nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("version deleted", "prompt_id", promptID, "version_id", versionID)
	return nil
}

func (r *repo) UpdateModelSetting(
	ctx context.Context,
	userID, promptID, versionID uuid.UUID,
	patch ModelSettingPatch,
) (*ModelSetting, error) {
	if err := r.access.EnsureOwner(ctx, userID, promptID); err != nil {
		return nil, err
	}

	q := `
		UPDATE model_settings ms
		SET ai_model_id = COALESCE($3, ms.ai_model_id),
		    temperature = COALESCE($4, ms.temperature),
		    max_token = COALESCE($5, ms.max_token),
		    top_p = COALESCE($6, ms.top_p),
		    frequency_penalty = COALESCE($7, ms.frequency_penalty),
		    presence_penalty = COALESCE($8, ms.presence_penalty)
		FROM prompt_versions v
		WHERE ms.prompt_version_id = v.id AND v.id = $1 AND v.prompt_id = $2
		RETURNING ms.ai_model_id, ms.temperature, ms.max_token, ms.top_p, ms.frequency_penalty, ms.presence_penalty`

	args := []any{
		versionID,
		promptID,
		patch.AIModelID,
		patch.Temperature,
		patch.MaxToken,
		patch.TopP,
		patch.FrequencyPenalty,
		patch.PresencePenalty,
	}

	ms, err := repository.QueryOne(ctx, r.db, q, args, scanModelSetting)
	if err != nil {
		return nil, mapModelError(repository.MapError(err, ErrVersionNotFound, err))
	}

	r.logger.Info("model setting updated", "prompt_id", promptID, "version_id", versionID)
	return &ms, nil
}

// viewAs checks view access and reports whether the caller owns the prompt.
func (r *repo) viewAs(ctx context.Context, userID, promptID uuid.UUID) (bool, error) {
	if err := r.access.EnsureViewer(ctx, userID, promptID); err != nil {
		return false, err
	}

	var ownerID uuid.UUID
	err := r.db.QueryRowContext(ctx, "SELECT owner_id FROM prompts WHERE id = $1", promptID).Scan(&ownerID)
	if err != nil {
		return false, repository.MapError(err, ErrNotFound, err)
	}
	return ownerID == userID, nil
}

// lockPrompt takes a row lock on the prompt so concurrent version writes
// serialize, and returns its current latest_version_id.
func lockPrompt(ctx context.Context, tx *sql.Tx, promptID uuid.UUID) (*uuid.UUID, error) {
	var latest *uuid.UUID
	err := tx.QueryRowContext(ctx,
		"SELECT latest_version_id FROM prompts WHERE id = $1 FOR UPDATE",
		promptID,
	).Scan(&latest)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, err)
	}
	return latest, nil
}

func newerThanLatest(ctx context.Context, tx *sql.Tx, latest *uuid.UUID, number int) (bool, error) {
	if latest == nil {
		return true, nil
	}
	var current int
	err := tx.QueryRowContext(ctx, "SELECT version_number FROM prompt_versions WHERE id = $1", *latest).Scan(&current)
	if err != nil {
		return false, fmt.Errorf("load latest version: %w", err)
	}
	return number > current, nil
}

func findVersion(ctx context.Context, q repository.Querier, promptID, versionID uuid.UUID) (*Version, error) {
	sqlText, args := query.NewBuilder(versionProjection).
		WhereEquals("ID", versionID).
		WhereEquals("PromptID", promptID).
		Build()

	v, err := repository.QueryOne(ctx, q, sqlText, args, scanVersion)
	if err != nil {
		return nil, repository.MapError(err, ErrVersionNotFound, err)
	}
	return &v, nil
}

func insertVersion(
	ctx context.Context,
	tx *sql.Tx,
	promptID uuid.UUID,
	number int,
	createdBy uuid.UUID,
	categoryID *int,
	content, commitMessage string,
	isDraft bool,
) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRowContext(ctx, `
		INSERT INTO prompt_versions (prompt_id, version_number, commit_message, content, is_draft, revision, created_by, category_id)
		VALUES ($1, $2, $3, $4, $5, 1, $6, $7)
		RETURNING id`,
		promptID, number, commitMessage, content, isDraft, createdBy, categoryID,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert version: %w", err)
	}
	return id, nil
}

func insertModelSetting(ctx context.Context, tx *sql.Tx, versionID uuid.UUID, ms ModelSetting) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO model_settings (prompt_version_id, ai_model_id, temperature, max_token, top_p, frequency_penalty, presence_penalty)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		versionID, ms.AIModelID, ms.Temperature, ms.MaxToken, ms.TopP, ms.FrequencyPenalty, ms.PresencePenalty,
	)
	if err != nil {
		return mapModelError(fmt.Errorf("insert model setting: %w", err))
	}
	return nil
}

func copyModelSetting(ctx context.Context, tx *sql.Tx, from, to uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO model_settings (prompt_version_id, `+modelSettingColumns+`)
		SELECT $2, `+modelSettingColumns+`
		FROM model_settings WHERE prompt_version_id = $1`,
		from, to,
	)
	if err != nil {
		return fmt.Errorf("copy model setting: %w", err)
	}
	return nil
}

func mapModelError(err error) error {
	if _, ok := repository.ForeignKeyViolation(err); ok {
		return fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	return err
}
