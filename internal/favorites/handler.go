package favorites

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/yumina0616/PromptLab-sub000/pkg/auth"
	"github.com/yumina0616/PromptLab-sub000/pkg/handlers"
	"github.com/yumina0616/PromptLab-sub000/pkg/routes"
)

// Handler provides HTTP endpoints for starring prompt versions.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a favorites handler backed by sys.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "favorites"),
	}
}

// Routes returns the route group for a version's favorite. Both routes
// require an authenticated caller.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/prompts/{id}/versions/{verId}/favorite",
		Tags:   []string{"Favorites"},
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: auth.Require(h.logger, h.Add)},
			{Method: "DELETE", Pattern: "", Handler: auth.Require(h.logger, h.Remove)},
		},
	}
}

// Add stars the version for the caller and reports the version's new
// star count.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	promptID, versionID, ok := h.ids(w, r)
	if !ok {
		return
	}

	if _, err := h.sys.Add(r.Context(), auth.UserID(r.Context()), promptID, versionID); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	status := Status{Starred: true}
	if n, err := h.sys.Count(r.Context(), versionID); err != nil {
		h.logger.Warn("count favorites failed", "version_id", versionID, "error", err)
	} else {
		status.StarCount = n
	}

	handlers.RespondJSON(w, http.StatusCreated, status)
}

// Remove clears the caller's star on the version.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	promptID, versionID, ok := h.ids(w, r)
	if !ok {
		return
	}

	if err := h.sys.Remove(r.Context(), auth.UserID(r.Context()), promptID, versionID); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ids(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	promptID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return uuid.Nil, uuid.Nil, false
	}
	versionID, err := uuid.Parse(r.PathValue("verId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return uuid.Nil, uuid.Nil, false
	}
	return promptID, versionID, true
}
