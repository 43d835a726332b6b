package aimodels

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/yumina0616/PromptLab-sub000/pkg/metrics"
	"github.com/yumina0616/PromptLab-sub000/pkg/providers"
	"github.com/yumina0616/PromptLab-sub000/pkg/ratelimit"
	"github.com/yumina0616/PromptLab-sub000/pkg/repository"
)

const modelColumns = "id, provider, model_key, display_name, active"

type repo struct {
	db      *sql.DB
	caller  providers.Caller
	limiter *ratelimit.Limiter
	logger  *slog.Logger
}

// New creates a model catalog implementing the System interface.
func New(db *sql.DB, caller providers.Caller, limiter *ratelimit.Limiter, logger *slog.Logger) System {
	return &repo{
		db:      db,
		caller:  caller,
		limiter: limiter,
		logger:  logger.With("system", "aimodels"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) List(ctx context.Context) ([]Model, error) {
	models, err := repository.QueryMany(ctx, r.db,
		"SELECT "+modelColumns+" FROM ai_models WHERE active ORDER BY id",
		nil, scanModel,
	)
	if err != nil {
		return nil, fmt.Errorf("query models: %w", err)
	}
	return models, nil
}

func (r *repo) Resolve(ctx context.Context, id int) (*Model, error) {
	m, err := repository.QueryOne(ctx, r.db,
		"SELECT "+modelColumns+" FROM ai_models WHERE id = $1",
		[]any{id}, scanModel,
	)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, err)
	}
	if !m.Active {
		return nil, ErrInactive
	}
	return &m, nil
}

func (r *repo) Test(ctx context.Context, userID uuid.UUID, cmd TestCommand) (*providers.Result, error) {
	if !r.limiter.Allow(userID.String()) {
		return nil, ratelimit.ErrRateLimited
	}

	m, err := r.Resolve(ctx, cmd.ModelID)
	if err != nil {
		return nil, err
	}

	result, err := r.caller.Call(ctx, m.Request(cmd.PromptText, cmd.Params))
	if err != nil {
		metrics.ObserveProviderCall(m.Provider, err, 0, 0)
		return nil, err
	}
	metrics.ObserveProviderCall(m.Provider, nil, result.Usage.PromptTokens, result.Usage.CompletionTokens)

	r.logger.Info("model tested", "model_id", m.ID, "provider", m.Provider, "user_id", userID)
	return result, nil
}

func scanModel(s repository.Scanner) (Model, error) {
	var m Model
	err := s.Scan(&m.ID, &m.Provider, &m.ModelKey, &m.DisplayName, &m.Active)
	return m, err
}
