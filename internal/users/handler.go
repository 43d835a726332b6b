package users

import (
	"log/slog"
	"net/http"

	"github.com/yumina0616/PromptLab-sub000/pkg/auth"
	"github.com/yumina0616/PromptLab-sub000/pkg/handlers"
	"github.com/yumina0616/PromptLab-sub000/pkg/openapi"
	"github.com/yumina0616/PromptLab-sub000/pkg/routes"
	"github.com/yumina0616/PromptLab-sub000/pkg/validation"
)

// Handler provides HTTP endpoints for sign-in and the caller's profile.
type Handler struct {
	sys        System
	cookieName string
	logger     *slog.Logger
}

// NewHandler creates a Handler. Sessions are also set as a cookie named
// cookieName when it is non-empty.
func NewHandler(sys System, cookieName string, logger *slog.Logger) *Handler {
	return &Handler{
		sys:        sys,
		cookieName: cookieName,
		logger:     logger.With("handler", "users"),
	}
}

// AuthRoutes returns the anonymous sign-in group.
func (h *Handler) AuthRoutes() routes.Group {
	return routes.Group{
		Prefix: "/auth",
		Tags:   []string{"Auth"},
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/register", Handler: h.Register, OpenAPI: registerOp},
			{Method: "POST", Pattern: "/login", Handler: h.Login, OpenAPI: loginOp},
			{Method: "POST", Pattern: "/oidc", Handler: h.LoginOIDC},
		},
	}
}

// Routes returns the profile group for the authenticated caller.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/users/me",
		Tags:   []string{"Users"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: auth.Require(h.logger, h.Me)},
			{Method: "PATCH", Pattern: "", Handler: auth.Require(h.logger, h.Update)},
			{Method: "DELETE", Pattern: "", Handler: auth.Require(h.logger, h.Delete)},
		},
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	cmd, ok := decode[RegisterCommand](h, w, r)
	if !ok {
		return
	}

	s, err := h.sys.Register(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.respondSession(w, http.StatusCreated, s)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	cmd, ok := decode[LoginCommand](h, w, r)
	if !ok {
		return
	}

	s, err := h.sys.Login(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.respondSession(w, http.StatusOK, s)
}

func (h *Handler) LoginOIDC(w http.ResponseWriter, r *http.Request) {
	cmd, ok := decode[OIDCCommand](h, w, r)
	if !ok {
		return
	}

	s, err := h.sys.LoginOIDC(r.Context(), cmd.IDToken)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.respondSession(w, http.StatusOK, s)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.sys.Find(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, u)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	cmd, ok := decode[UpdateCommand](h, w, r)
	if !ok {
		return
	}

	u, err := h.sys.Update(r.Context(), auth.UserID(r.Context()), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, u)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sys.Delete(r.Context(), auth.UserID(r.Context())); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if h.cookieName != "" {
		http.SetCookie(w, &http.Cookie{Name: h.cookieName, Path: "/", MaxAge: -1})
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondSession(w http.ResponseWriter, status int, s *Session) {
	if h.cookieName != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     h.cookieName,
			Value:    s.Token,
			Path:     "/",
			Expires:  s.ExpiresAt,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	handlers.RespondJSON(w, status, s)
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

var registerOp = &openapi.Operation{
	Summary:     "Register",
	Description: "Creates a local account and its personal workspace, and returns a session token.",
	RequestBody: openapi.RequestBodyJSON("RegisterCommand", true),
	Responses: map[int]*openapi.Response{
		201: openapi.ResponseJSON("Session", "Session"),
		400: openapi.ResponseRef("BadRequest"),
		409: openapi.ResponseRef("Conflict"),
	},
}

var loginOp = &openapi.Operation{
	Summary:     "Login",
	RequestBody: openapi.RequestBodyJSON("LoginCommand", true),
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Session", "Session"),
		401: openapi.ResponseRef("Unauthorized"),
	},
}

// Schemas returns the component schemas referenced by user operations.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"RegisterCommand": {
			Type:     "object",
			Required: []string{"email", "userid", "password"},
			Properties: map[string]*openapi.Schema{
				"email":        {Type: "string", Format: "email"},
				"userid":       {Type: "string"},
				"password":     {Type: "string", Format: "password"},
				"display_name": {Type: "string"},
			},
		},
		"LoginCommand": {
			Type:     "object",
			Required: []string{"email", "password"},
			Properties: map[string]*openapi.Schema{
				"email":    {Type: "string", Format: "email"},
				"password": {Type: "string", Format: "password"},
			},
		},
		"Session": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"user":       {Type: "object"},
				"token":      {Type: "string"},
				"expires_at": {Type: "string", Format: "date-time"},
			},
		},
	}
}
