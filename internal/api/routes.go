package api

import (
	"fmt"
	"net/http"

	"github.com/yumina0616/PromptLab-sub000/internal/aimodels"
	"github.com/yumina0616/PromptLab-sub000/internal/config"
	"github.com/yumina0616/PromptLab-sub000/internal/playground"
	"github.com/yumina0616/PromptLab-sub000/internal/prompts"
	"github.com/yumina0616/PromptLab-sub000/internal/tips"
	"github.com/yumina0616/PromptLab-sub000/internal/users"
	"github.com/yumina0616/PromptLab-sub000/internal/workspaces"
	"github.com/yumina0616/PromptLab-sub000/pkg/openapi"
	"github.com/yumina0616/PromptLab-sub000/pkg/routes"
)

func groups(domain *Domain, cfg *config.Config) []routes.Group {
	promptHandler := domain.Prompts.Handler()
	commentHandler := domain.Comments.Handler()
	userHandler := domain.Users.Handler()

	return []routes.Group{
		userHandler.AuthRoutes(),
		userHandler.Routes(),
		promptHandler.Routes(),
		promptHandler.CategoryRoutes(),
		domain.Favorites.Handler().Routes(),
		commentHandler.Routes(),
		commentHandler.DeleteRoutes(),
		domain.Workspaces.Handler().Routes(),
		domain.Models.Handler().Routes(),
		domain.Playground.Handler().Routes(),
		domain.Tips.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
	}
}

func registerRoutes(mux *http.ServeMux, domain *Domain, cfg *config.Config) error {
	all := groups(domain, cfg)
	routes.Register(mux, all...)

	spec, err := buildSpec(cfg, all)
	if err != nil {
		return err
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(spec))
	return nil
}

func buildSpec(cfg *config.Config, all []routes.Group) ([]byte, error) {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	for _, schemas := range []map[string]*openapi.Schema{
		prompts.Schemas(),
		workspaces.Schemas(),
		users.Schemas(),
		aimodels.Schemas(),
		playground.Schemas(),
		tips.Schemas(),
	} {
		spec.Components.AddSchemas(schemas)
	}
	spec.Components.AddResponses(tips.Responses(cfg.API.MaxUploadSizeBytes()))

	routes.Describe(spec, "", all...)

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal openapi spec: %w", err)
	}
	return data, nil
}
