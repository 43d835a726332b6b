package playground

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/yumina0616/PromptLab-sub000/internal/access"
	"github.com/yumina0616/PromptLab-sub000/internal/tips"
	"github.com/yumina0616/PromptLab-sub000/pkg/formatting"
	"github.com/yumina0616/PromptLab-sub000/pkg/metrics"
	"github.com/yumina0616/PromptLab-sub000/pkg/pagination"
	"github.com/yumina0616/PromptLab-sub000/pkg/providers"
	"github.com/yumina0616/PromptLab-sub000/pkg/query"
	"github.com/yumina0616/PromptLab-sub000/pkg/ratelimit"
	"github.com/yumina0616/PromptLab-sub000/pkg/repository"
)

const analyzerTips = 3

// Deps are the collaborators a playground needs.
type Deps struct {
	Access    access.System
	Models    ModelResolver
	Caller    providers.Caller
	Tokenizer providers.Tokenizer
	Tips      TipSuggester
	Limiter   *ratelimit.Limiter
}

type repo struct {
	db         *sql.DB
	deps       Deps
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a playground implementing the System interface.
// A nil Tips suggester leaves the analyzer's tips empty.
func New(db *sql.DB, deps Deps, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		deps:       deps,
		logger:     logger.With("system", "playground"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Run(ctx context.Context, userID uuid.UUID, cmd RunCommand) (*RunResult, error) {
	promptID, versionID, err := r.resolveSource(ctx, userID, cmd.Source)
	if err != nil {
		return nil, err
	}

	if !r.deps.Limiter.Allow(userID.String()) {
		return nil, ratelimit.ErrRateLimited
	}

	m, err := r.deps.Models.Resolve(ctx, cmd.ModelID)
	if err != nil {
		return nil, err
	}

	rendered, _ := formatting.Render(cmd.PromptText, cmd.ModelParams.Variables)

	result, err := r.deps.Caller.Call(ctx, m.Request(rendered, cmd.ModelParams.Params))
	if err != nil {
		metrics.ObserveProviderCall(m.Provider, err, 0, 0)
		r.logger.Warn("playground call failed", "model_id", m.ID, "provider", m.Provider, "error", err)
		return nil, err
	}
	metrics.ObserveProviderCall(m.Provider, nil, result.Usage.PromptTokens, result.Usage.CompletionTokens)

	analysis := Analyze(cmd.PromptText, cmd.ModelParams, m.ModelKey, r.deps.Tokenizer)
	analysis.Tips = r.suggest(ctx, cmd.PromptText)

	out := &RunResult{
		Output:   result.Output,
		Usage:    result.Usage,
		Analyzer: analysis,
	}

	if cmd.ModelParams.JSONMode() {
		parsed, err := formatting.Parse[any](result.Output)
		if err != nil {
			r.logger.Debug("json output not parseable", "model_id", m.ID, "error", err)
		} else {
			out.Parsed = parsed
		}
	}

	out.HistoryID, err = r.record(ctx, userID, m.ID, promptID, versionID, cmd, out)
	if err != nil {
		return nil, err
	}

	r.logger.Info("playground run",
		"history_id", out.HistoryID,
		"user_id", userID,
		"model_id", m.ID,
		"total_tokens", result.Usage.TotalTokens,
	)
	return out, nil
}

func (r *repo) ListHistory(
	ctx context.Context,
	userID uuid.UUID,
	page pagination.PageRequest,
) (*pagination.PageResult[History], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("UserID", userID)

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count history: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.Limit)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanHistory)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.Limit)
	return &result, nil
}

func (r *repo) FindHistory(ctx context.Context, userID, id uuid.UUID) (*History, error) {
	q, args := query.NewBuilder(projection).
		WhereEquals("ID", id).
		WhereEquals("UserID", userID).
		BuildSingleOrNull()

	h, err := repository.QueryOne(ctx, r.db, q, args, scanHistory)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, err)
	}
	return &h, nil
}

func (r *repo) DeleteHistory(ctx context.Context, userID, id uuid.UUID) error {
	if err := repository.ExecExpectOne(ctx, r.db,
		"DELETE FROM playground_history WHERE id = $1 AND user_id = $2",
		id, userID,
	); err != nil {
		return repository.MapError(err, ErrNotFound, err)
	}

	r.logger.Info("history deleted", "id", id, "user_id", userID)
	return nil
}

// resolveSource checks that the caller may read the referenced prompt or
// version and returns the ids to record. Drafts are visible to owners only.
func (r *repo) resolveSource(ctx context.Context, userID uuid.UUID, src *Source) (*uuid.UUID, *uuid.UUID, error) {
	if src == nil || (src.PromptID == nil && src.PromptVersionID == nil) {
		return nil, nil, nil
	}

	if src.PromptVersionID == nil {
		if err := r.deps.Access.EnsureViewer(ctx, userID, *src.PromptID); err != nil {
			return nil, nil, err
		}
		return src.PromptID, nil, nil
	}

	var (
		promptID uuid.UUID
		ownerID  uuid.UUID
		isDraft  bool
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT v.prompt_id, p.owner_id, v.is_draft
		FROM prompt_versions v
		JOIN prompts p ON p.id = v.prompt_id
		WHERE v.id = $1`,
		*src.PromptVersionID,
	).Scan(&promptID, &ownerID, &isDraft)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrSourceNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load source version: %w", err)
	}

	if src.PromptID != nil && *src.PromptID != promptID {
		return nil, nil, ErrSourceMismatch
	}
	if err := r.deps.Access.EnsureViewer(ctx, userID, promptID); err != nil {
		return nil, nil, err
	}
	if isDraft && ownerID != userID {
		return nil, nil, ErrSourceNotFound
	}
	return &promptID, src.PromptVersionID, nil
}

func (r *repo) suggest(ctx context.Context, text string) []tips.Suggestion {
	if r.deps.Tips == nil {
		return []tips.Suggestion{}
	}
	found, err := r.deps.Tips.Suggest(ctx, tips.SuggestCommand{Text: text, Limit: analyzerTips})
	if err != nil {
		r.logger.Warn("tip lookup failed", "error", err)
		return []tips.Suggestion{}
	}
	if found == nil {
		return []tips.Suggestion{}
	}
	return found
}

func (r *repo) record(
	ctx context.Context,
	userID uuid.UUID,
	modelID int,
	promptID, versionID *uuid.UUID,
	cmd RunCommand,
	out *RunResult,
) (uuid.UUID, error) {
	params, err := json.Marshal(cmd.ModelParams)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode model params: %w", err)
	}
	usage, err := json.Marshal(out.Usage)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode usage: %w", err)
	}
	analyzer, err := json.Marshal(out.Analyzer)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode analyzer: %w", err)
	}

	var id uuid.UUID
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO playground_history
			(user_id, ai_model_id, prompt_id, prompt_version_id, prompt_text, model_params, output, usage, analyzer)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		userID, modelID, promptID, versionID, cmd.PromptText,
		string(params), out.Output, string(usage), string(analyzer),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert history: %w", err)
	}
	return id, nil
}
