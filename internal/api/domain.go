package api

import (
	"github.com/yumina0616/PromptLab-sub000/internal/access"
	"github.com/yumina0616/PromptLab-sub000/internal/aimodels"
	"github.com/yumina0616/PromptLab-sub000/internal/comments"
	"github.com/yumina0616/PromptLab-sub000/internal/favorites"
	"github.com/yumina0616/PromptLab-sub000/internal/playground"
	"github.com/yumina0616/PromptLab-sub000/internal/prompts"
	"github.com/yumina0616/PromptLab-sub000/internal/tips"
	"github.com/yumina0616/PromptLab-sub000/internal/users"
	"github.com/yumina0616/PromptLab-sub000/internal/workspaces"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Access     access.System
	Prompts    prompts.System
	Workspaces workspaces.System
	Favorites  favorites.System
	Comments   comments.System
	Users      users.System
	Models     aimodels.System
	Tips       tips.System
	Playground playground.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	accessSystem := access.New(db, runtime.Logger)
	workspacesSystem := workspaces.New(db, accessSystem, runtime.Logger)

	usersSystem := users.New(
		db,
		workspacesSystem,
		runtime.Tokens,
		runtime.OIDC,
		runtime.CookieName,
		runtime.Logger,
	)

	modelsSystem := aimodels.New(db, runtime.Providers, runtime.Limiter, runtime.Logger)

	tipsSystem := tips.New(
		db,
		runtime.Storage,
		runtime.Embedder,
		runtime.Logger,
		runtime.Pagination,
	)

	playgroundSystem := playground.New(
		db,
		playground.Deps{
			Access:    accessSystem,
			Models:    modelsSystem,
			Caller:    runtime.Providers,
			Tokenizer: runtime.Tokenizer,
			Tips:      tipsSystem,
			Limiter:   runtime.Limiter,
		},
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Access:     accessSystem,
		Prompts:    prompts.New(db, accessSystem, runtime.Logger, runtime.Pagination),
		Workspaces: workspacesSystem,
		Favorites:  favorites.New(db, accessSystem, runtime.Logger),
		Comments:   comments.New(db, accessSystem, runtime.Logger),
		Users:      usersSystem,
		Models:     modelsSystem,
		Tips:       tipsSystem,
		Playground: playgroundSystem,
	}
}
