package prompts

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/yumina0616/PromptLab-sub000/pkg/auth"
	"github.com/yumina0616/PromptLab-sub000/pkg/handlers"
	"github.com/yumina0616/PromptLab-sub000/pkg/pagination"
	"github.com/yumina0616/PromptLab-sub000/pkg/routes"
	"github.com/yumina0616/PromptLab-sub000/pkg/validation"
)

// Handler provides HTTP endpoints for prompt and version operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "prompts"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for prompt endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/prompts",
		Tags:   []string{"Prompts"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: listOp},
			{Method: "POST", Pattern: "", Handler: auth.Require(h.logger, h.Create), OpenAPI: createOp},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "PATCH", Pattern: "/{id}", Handler: auth.Require(h.logger, h.Update)},
			{Method: "DELETE", Pattern: "/{id}", Handler: auth.Require(h.logger, h.Delete)},
			{Method: "GET", Pattern: "/{id}/versions", Handler: h.ListVersions},
			{Method: "POST", Pattern: "/{id}/versions", Handler: auth.Require(h.logger, h.CreateVersion)},
			{Method: "GET", Pattern: "/{id}/versions/{verId}", Handler: h.FindVersion},
			{Method: "PATCH", Pattern: "/{id}/versions/{verId}", Handler: auth.Require(h.logger, h.UpdateVersion)},
			{Method: "DELETE", Pattern: "/{id}/versions/{verId}", Handler: auth.Require(h.logger, h.DeleteVersion)},
			{Method: "PATCH", Pattern: "/{id}/versions/{verId}/model-setting", Handler: auth.Require(h.logger, h.UpdateModelSetting)},
		},
	}
}

// CategoryRoutes returns the category lookup group.
func (h *Handler) CategoryRoutes() routes.Group {
	return routes.Group{
		Prefix: "/categories",
		Tags:   []string{"Categories"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Categories},
		},
	}
}

// List returns a page of prompts. Without owner=me only public prompts are listed.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q, err := QueryFromValues(r.URL.Query(), h.pagination)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.sys.List(r.Context(), auth.UserID(r.Context()), q)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single prompt with tags, latest version, and star count.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	item, err := h.sys.Find(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, item)
}

// Create processes a JSON body to create a prompt with its first version.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	cmd, ok := decode[CreateCommand](h, w, r)
	if !ok {
		return
	}

	result, err := h.sys.Create(r.Context(), auth.UserID(r.Context()), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, result)
}

// Update patches prompt metadata.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	cmd, ok := decode[UpdateCommand](h, w, r)
	if !ok {
		return
	}

	prompt, err := h.sys.Update(r.Context(), auth.UserID(r.Context()), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, prompt)
}

// Delete removes a prompt and, through cascading keys, its dependents.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), auth.UserID(r.Context()), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListVersions returns the versions visible to the caller, newest first.
func (h *Handler) ListVersions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	versions, err := h.sys.ListVersions(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, versions)
}

// FindVersion returns a single version with its model setting.
func (h *Handler) FindVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	verID, ok := h.pathID(w, r, "verId")
	if !ok {
		return
	}

	v, err := h.sys.FindVersion(r.Context(), auth.UserID(r.Context()), id, verID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, v)
}

// CreateVersion appends a version to the prompt.
func (h *Handler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	cmd, ok := decode[VersionCommand](h, w, r)
	if !ok {
		return
	}

	v, err := h.sys.CreateVersion(r.Context(), auth.UserID(r.Context()), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, v)
}

// UpdateVersion changes the commit message or publishes a draft.
func (h *Handler) UpdateVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	verID, ok := h.pathID(w, r, "verId")
	if !ok {
		return
	}

	cmd, ok := decode[UpdateVersionCommand](h, w, r)
	if !ok {
		return
	}

	v, err := h.sys.UpdateVersion(r.Context(), auth.UserID(r.Context()), id, verID, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, v)
}

// DeleteVersion removes a version and re-points the prompt's latest version.
func (h *Handler) DeleteVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	verID, ok := h.pathID(w, r, "verId")
	if !ok {
		return
	}

	if err := h.sys.DeleteVersion(r.Context(), auth.UserID(r.Context()), id, verID); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateModelSetting patches the model setting of a version.
func (h *Handler) UpdateModelSetting(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	verID, ok := h.pathID(w, r, "verId")
	if !ok {
		return
	}

	patch, ok := decode[ModelSettingPatch](h, w, r)
	if !ok {
		return
	}

	ms, err := h.sys.UpdateModelSetting(r.Context(), auth.UserID(r.Context()), id, verID, patch)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, ms)
}

// Categories returns the category lookup table.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.sys.Categories(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, cats)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

func decode[T any](h *Handler, w http.ResponseWriter, r *http.Request) (T, bool) {
	v, err := handlers.DecodeJSON[T](r)
	if err == nil {
		err = validation.Struct(v)
	}
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return v, false
	}
	return v, true
}
