package workspaces

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/yumina0616/PromptLab-sub000/pkg/auth"
	"github.com/yumina0616/PromptLab-sub000/pkg/handlers"
	"github.com/yumina0616/PromptLab-sub000/pkg/routes"
	"github.com/yumina0616/PromptLab-sub000/pkg/validation"
)

// Handler provides HTTP endpoints for workspaces, members, invites and shares.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a workspace handler backed by sys.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "workspaces"),
	}
}

// Routes returns the route group definition for workspace endpoints. Every
// route requires an authenticated caller.
func (h *Handler) Routes() routes.Group {
	require := func(fn http.HandlerFunc) http.HandlerFunc {
		return auth.Require(h.logger, fn)
	}

	return routes.Group{
		Prefix: "/workspaces",
		Tags:   []string{"Workspaces"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: require(h.ListMine)},
			{Method: "POST", Pattern: "", Handler: require(h.Create), OpenAPI: createOp},
			{Method: "GET", Pattern: "/{id}", Handler: require(h.Find)},
			{Method: "PATCH", Pattern: "/{id}", Handler: require(h.Update)},
			{Method: "DELETE", Pattern: "/{id}", Handler: require(h.Delete)},
			{Method: "GET", Pattern: "/{id}/members", Handler: require(h.ListMembers)},
			{Method: "POST", Pattern: "/{id}/members", Handler: require(h.Invite), OpenAPI: inviteOp},
			{Method: "PATCH", Pattern: "/{id}/members/{userId}", Handler: require(h.UpdateMember)},
			{Method: "DELETE", Pattern: "/{id}/members/{userId}", Handler: require(h.RemoveMember)},
			{Method: "GET", Pattern: "/{id}/invites", Handler: require(h.ListInvites)},
			{Method: "POST", Pattern: "/{id}/invites", Handler: require(h.Invite), OpenAPI: inviteOp},
			{Method: "GET", Pattern: "/{id}/prompts", Handler: require(h.ListShared)},
			{Method: "POST", Pattern: "/{id}/prompts/{promptId}/share", Handler: require(h.Share), OpenAPI: shareOp},
			{Method: "PATCH", Pattern: "/{id}/prompts/{promptId}", Handler: require(h.UpdateShare)},
			{Method: "DELETE", Pattern: "/{id}/prompts/{promptId}", Handler: require(h.Unshare)},
		},
	}
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	list, err := h.sys.ListMine(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, list)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	cmd, ok := decode[CreateCommand](h, w, r)
	if !ok {
		return
	}

	ws, err := h.sys.Create(r.Context(), auth.UserID(r.Context()), cmd)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, ws)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	ws, err := h.sys.Find(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, ws)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	cmd, ok := decode[UpdateCommand](h, w, r)
	if !ok {
		return
	}

	ws, err := h.sys.Update(r.Context(), auth.UserID(r.Context()), id, cmd)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, ws)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), auth.UserID(r.Context()), id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	members, err := h.sys.ListMembers(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, members)
}

func (h *Handler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := h.pathID(w, r, "userId")
	if !ok {
		return
	}
	cmd, ok := decode[UpdateMemberCommand](h, w, r)
	if !ok {
		return
	}

	m, err := h.sys.UpdateMemberRole(r.Context(), auth.UserID(r.Context()), id, userID, cmd.Role)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, m)
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := h.pathID(w, r, "userId")
	if !ok {
		return
	}

	if err := h.sys.RemoveMember(r.Context(), auth.UserID(r.Context()), id, userID); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Invite adds a registered user to the workspace immediately.
func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	cmd, ok := decode[InviteCommand](h, w, r)
	if !ok {
		return
	}

	inv, err := h.sys.SendInvite(r.Context(), id, auth.UserID(r.Context()), cmd)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, inv)
}

func (h *Handler) ListInvites(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	invites, err := h.sys.ListInvites(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, invites)
}

func (h *Handler) ListShared(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	shared, err := h.sys.ListShared(r.Context(), id, auth.UserID(r.Context()))
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, shared)
}

// Share attaches a prompt to the workspace. An empty body shares as viewer.
func (h *Handler) Share(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	promptID, ok := h.pathID(w, r, "promptId")
	if !ok {
		return
	}

	var cmd ShareCommand
	if r.ContentLength != 0 {
		if cmd, ok = decode[ShareCommand](h, w, r); !ok {
			return
		}
	}

	sh, err := h.sys.SharePrompt(r.Context(), id, promptID, auth.UserID(r.Context()), cmd.Role)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, sh)
}

func (h *Handler) UpdateShare(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	promptID, ok := h.pathID(w, r, "promptId")
	if !ok {
		return
	}
	cmd, ok := decode[UpdateShareCommand](h, w, r)
	if !ok {
		return
	}

	sh, err := h.sys.UpdateShare(r.Context(), auth.UserID(r.Context()), id, promptID, cmd.Role)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, sh)
}

func (h *Handler) Unshare(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	promptID, ok := h.pathID(w, r, "promptId")
	if !ok {
		return
	}

	if err := h.sys.Unshare(r.Context(), auth.UserID(r.Context()), id, promptID); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
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
		h.fail(w, err)
		return v, false
	}
	return v, true
}
