package aimodels

import (
	"log/slog"
	"net/http"

	"github.com/yumina0616/PromptLab-sub000/pkg/auth"
	"github.com/yumina0616/PromptLab-sub000/pkg/handlers"
	"github.com/yumina0616/PromptLab-sub000/pkg/openapi"
	"github.com/yumina0616/PromptLab-sub000/pkg/routes"
	"github.com/yumina0616/PromptLab-sub000/pkg/validation"
)

type Handler struct {
	sys    System
	logger *slog.Logger
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "aimodels"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/models",
		Tags:   []string{"Models"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "/test", Handler: auth.RequireAdmin(h.logger, h.Test), OpenAPI: testOp},
		},
	}
}

// List returns the active models.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	models, err := h.sys.List(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, models)
}

// Test calls the model's provider directly. Administrators only.
func (h *Handler) Test(w http.ResponseWriter, r *http.Request) {
	cmd, err := handlers.DecodeJSON[TestCommand](r)
	if err == nil {
		err = validation.Struct(cmd)
	}
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.sys.Test(r.Context(), auth.UserID(r.Context()), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

var testOp = &openapi.Operation{
	Summary:     "Test model",
	Description: "Runs a prompt against a model's provider. Administrators only.",
	RequestBody: openapi.RequestBodyJSON("ModelTestCommand", true),
	Responses: map[int]*openapi.Response{
		200: {Description: "Provider output and usage"},
		403: openapi.ResponseRef("Forbidden"),
		429: openapi.ResponseRef("TooManyRequests"),
		502: openapi.ResponseRef("BadGateway"),
	},
}

// Schemas returns the component schemas referenced by model operations.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"ModelTestCommand": {
			Type:     "object",
			Required: []string{"model_id", "prompt_text"},
			Properties: map[string]*openapi.Schema{
				"model_id":    {Type: "integer", Example: 1},
				"prompt_text": {Type: "string"},
				"params":      {Type: "object"},
			},
		},
	}
}
