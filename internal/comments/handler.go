package comments

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/yumina0616/PromptLab-sub000/pkg/auth"
	"github.com/yumina0616/PromptLab-sub000/pkg/handlers"
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
		logger: logger.With("handler", "comments"),
	}
}

// Routes returns the version-scoped comment group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/prompts/{id}/versions/{verId}/comments",
		Tags:   []string{"Comments"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: auth.Require(h.logger, h.List)},
			{Method: "POST", Pattern: "", Handler: auth.Require(h.logger, h.Create)},
		},
	}
}

// DeleteRoutes returns the group for deleting a comment by id.
func (h *Handler) DeleteRoutes() routes.Group {
	return routes.Group{
		Prefix: "/comments",
		Tags:   []string{"Comments"},
		Routes: []routes.Route{
			{Method: "DELETE", Pattern: "/{id}", Handler: auth.Require(h.logger, h.Delete)},
		},
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	promptID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	versionID, ok := h.pathID(w, r, "verId")
	if !ok {
		return
	}

	list, err := h.sys.List(r.Context(), auth.UserID(r.Context()), promptID, versionID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, list)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	promptID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	versionID, ok := h.pathID(w, r, "verId")
	if !ok {
		return
	}

	cmd, err := handlers.DecodeJSON[CreateCommand](r)
	if err == nil {
		err = validation.Struct(cmd)
	}
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	c, err := h.sys.Create(r.Context(), auth.UserID(r.Context()), promptID, versionID, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, c)
}

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

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
