package playground

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/yumina0616/PromptLab-sub000/pkg/auth"
	"github.com/yumina0616/PromptLab-sub000/pkg/handlers"
	"github.com/yumina0616/PromptLab-sub000/pkg/openapi"
	"github.com/yumina0616/PromptLab-sub000/pkg/pagination"
	"github.com/yumina0616/PromptLab-sub000/pkg/routes"
	"github.com/yumina0616/PromptLab-sub000/pkg/validation"
)

// Handler provides HTTP endpoints for playground runs and history.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "playground"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for playground endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/playground",
		Tags:   []string{"Playground"},
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/run", Handler: auth.Require(h.logger, h.Run), OpenAPI: runOp},
			{Method: "GET", Pattern: "/history", Handler: auth.Require(h.logger, h.ListHistory)},
			{Method: "GET", Pattern: "/history/{id}", Handler: auth.Require(h.logger, h.FindHistory)},
			{Method: "DELETE", Pattern: "/history/{id}", Handler: auth.Require(h.logger, h.DeleteHistory)},
		},
	}
}

// Run executes a prompt and returns the output with its analysis.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	cmd, err := handlers.DecodeJSON[RunCommand](r)
	if err == nil {
		err = validation.Struct(cmd)
	}
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.sys.Run(r.Context(), auth.UserID(r.Context()), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.ParsePageRequest(r.URL.Query(), h.pagination)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.sys.ListHistory(r.Context(), auth.UserID(r.Context()), page)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) FindHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	entry, err := h.sys.FindHistory(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, entry)
}

func (h *Handler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.sys.DeleteHistory(r.Context(), auth.UserID(r.Context()), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

var runOp = &openapi.Operation{
	Summary:     "Run prompt",
	Description: "Renders {{variables}}, calls the selected model, analyzes the prompt, and records the run in history.",
	RequestBody: openapi.RequestBodyJSON("RunCommand", true),
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Run output", "RunResult"),
		400: openapi.ResponseRef("BadRequest"),
		401: openapi.ResponseRef("Unauthorized"),
		403: openapi.ResponseRef("Forbidden"),
		429: openapi.ResponseRef("TooManyRequests"),
		502: openapi.ResponseRef("BadGateway"),
	},
}

// Schemas returns the component schemas referenced by playground operations.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"RunCommand": {
			Type:     "object",
			Required: []string{"model_id", "prompt_text"},
			Properties: map[string]*openapi.Schema{
				"model_id":    {Type: "integer", Example: 1},
				"prompt_text": {Type: "string", Example: "Summarize {{text}} in three bullet points."},
				"model_params": {
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"temperature":       {Type: "number"},
						"max_token":         {Type: "integer"},
						"top_p":             {Type: "number"},
						"frequency_penalty": {Type: "number"},
						"presence_penalty":  {Type: "number"},
						"response_format":   {Type: "string", Enum: []any{"text", "json"}},
						"variables":         {Type: "object"},
					},
				},
				"source": {
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"prompt_id":         {Type: "string", Format: "uuid"},
						"prompt_version_id": {Type: "string", Format: "uuid"},
					},
				},
			},
		},
		"RunResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"output":     {Type: "string"},
				"usage":      {Type: "object"},
				"analyzer":   {Type: "object"},
				"history_id": {Type: "string", Format: "uuid"},
				"parsed":     {Description: "Decoded output when response_format is json"},
			},
		},
	}
}
