package users_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yumina0616/PromptLab-sub000/internal/users"
	"github.com/yumina0616/PromptLab-sub000/pkg/auth"
	"github.com/yumina0616/PromptLab-sub000/pkg/handlers"
	"github.com/yumina0616/PromptLab-sub000/pkg/routes"
)

type mockSystem struct {
	registerFn  func(ctx context.Context, cmd users.RegisterCommand) (*users.Session, error)
	loginFn     func(ctx context.Context, cmd users.LoginCommand) (*users.Session, error)
	loginOIDCFn func(ctx context.Context, raw string) (*users.Session, error)
	findFn      func(ctx context.Context, id uuid.UUID) (*users.User, error)
	updateFn    func(ctx context.Context, id uuid.UUID, cmd users.UpdateCommand) (*users.User, error)
	deleteFn    func(ctx context.Context, id uuid.UUID) error
}

func (m *mockSystem) Handler() *users.Handler {
	return users.NewHandler(m, "promptlab_token", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (m *mockSystem) Register(ctx context.Context, cmd users.RegisterCommand) (*users.Session, error) {
	return m.registerFn(ctx, cmd)
}

func (m *mockSystem) Login(ctx context.Context, cmd users.LoginCommand) (*users.Session, error) {
	return m.loginFn(ctx, cmd)
}

func (m *mockSystem) LoginOIDC(ctx context.Context, raw string) (*users.Session, error) {
	return m.loginOIDCFn(ctx, raw)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*users.User, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) Update(ctx context.Context, id uuid.UUID, cmd users.UpdateCommand) (*users.User, error) {
	return m.updateFn(ctx, id, cmd)
}

func (m *mockSystem) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

var userID = uuid.MustParse("11111111-1111-1111-1111-111111111111")

func setupMux(sys *mockSystem) *http.ServeMux {
	h := sys.Handler()
	mux := http.NewServeMux()
	routes.Register(mux, h.AuthRoutes(), h.Routes())
	return mux
}

func session(handle string) *users.Session {
	return &users.Session{
		User:      &users.User{ID: userID, UserHandle: handle},
		Token:     "tok",
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func post(mux *http.ServeMux, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", target, bytes.NewBufferString(body)))
	return rec
}

func TestHandlerRegister(t *testing.T) {
	sys := &mockSystem{
		registerFn: func(_ context.Context, cmd users.RegisterCommand) (*users.Session, error) {
			switch cmd.Email {
			case "taken@b.io":
				return nil, users.ErrEmailTaken
			case "dup@b.io":
				return nil, users.ErrUserIDTaken
			}
			return session(cmd.UserHandle), nil
		},
	}
	mux := setupMux(sys)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"created", `{"email":"a@b.io","userid":"alice","password":"longenough"}`, http.StatusCreated, ""},
		{"email taken", `{"email":"taken@b.io","userid":"alice","password":"longenough"}`, http.StatusConflict, "EMAIL_TAKEN"},
		{"userid taken", `{"email":"dup@b.io","userid":"alice","password":"longenough"}`, http.StatusConflict, "USERID_TAKEN"},
		{"short password", `{"email":"a@b.io","userid":"alice","password":"x"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad handle", `{"email":"a@b.io","userid":"a b","password":"longenough"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(mux, "/auth/register", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCode != "" {
				var body handlers.ErrorResponse
				if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if body.Code != tt.wantCode {
					t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
				}
				return
			}

			var s users.Session
			if err := json.NewDecoder(rec.Body).Decode(&s); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if s.Token != "tok" || s.User == nil || s.User.UserHandle != "alice" {
				t.Errorf("session = %+v", s)
			}
			cookies := rec.Result().Cookies()
			if len(cookies) != 1 || cookies[0].Name != "promptlab_token" || !cookies[0].HttpOnly {
				t.Errorf("cookies = %+v", cookies)
			}
		})
	}
}

func TestHandlerLogin(t *testing.T) {
	sys := &mockSystem{
		loginFn: func(_ context.Context, cmd users.LoginCommand) (*users.Session, error) {
			if cmd.Password != "correct-horse" {
				return nil, users.ErrInvalidCredentials
			}
			return session("alice"), nil
		},
		loginOIDCFn: func(context.Context, string) (*users.Session, error) {
			return nil, users.ErrOIDCDisabled
		},
	}
	mux := setupMux(sys)

	if rec := post(mux, "/auth/login", `{"email":"a@b.io","password":"correct-horse"}`); rec.Code != http.StatusOK {
		t.Errorf("login status = %d, want 200", rec.Code)
	}
	if rec := post(mux, "/auth/login", `{"email":"a@b.io","password":"wrong"}`); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password status = %d, want 401", rec.Code)
	}
	if rec := post(mux, "/auth/oidc", `{"id_token":"x"}`); rec.Code != http.StatusNotFound {
		t.Errorf("oidc disabled status = %d, want 404", rec.Code)
	}
	if rec := post(mux, "/auth/oidc", `{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing id_token status = %d, want 400", rec.Code)
	}
}

func TestHandlerProfile(t *testing.T) {
	var deleted uuid.UUID
	sys := &mockSystem{
		findFn: func(_ context.Context, id uuid.UUID) (*users.User, error) {
			return &users.User{ID: id, UserHandle: "alice", Theme: "system"}, nil
		},
		updateFn: func(_ context.Context, id uuid.UUID, cmd users.UpdateCommand) (*users.User, error) {
			return &users.User{ID: id, Theme: *cmd.Theme}, nil
		},
		deleteFn: func(_ context.Context, id uuid.UUID) error {
			deleted = id
			return nil
		},
	}
	mux := setupMux(sys)

	tests := []struct {
		name       string
		method     string
		body       string
		authed     bool
		wantStatus int
	}{
		{"anonymous me", "GET", "", false, http.StatusUnauthorized},
		{"me", "GET", "", true, http.StatusOK},
		{"update theme", "PATCH", `{"theme":"dark"}`, true, http.StatusOK},
		{"bad theme", "PATCH", `{"theme":"neon"}`, true, http.StatusBadRequest},
		{"bad avatar", "PATCH", `{"avatar_url":"not a url"}`, true, http.StatusBadRequest},
		{"delete", "DELETE", "", true, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = bytes.NewBufferString(tt.body)
			}
			req := httptest.NewRequest(tt.method, "/users/me", body)
			if tt.authed {
				req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: userID}))
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}

	if deleted != userID {
		t.Errorf("deleted = %s, want %s", deleted, userID)
	}
}

func TestHandleFromEmail(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"Alice.Smith@example.com", "alicesmith"},
		{"a@b.io", "a00"},
		{"very.long.local.part.that.goes.on@x.io", "verylonglocalpartthatgoe"},
	}

	for _, tt := range tests {
		if got := users.HandleFromEmail(tt.email); got != tt.want {
			t.Errorf("HandleFromEmail(%q) = %q, want %q", tt.email, got, tt.want)
		}
	}
}

func TestDisplayNameOr(t *testing.T) {
	if got := users.DisplayNameOr("  ", "alice"); got != "alice" {
		t.Errorf("blank name = %q, want alice", got)
	}
	if got := users.DisplayNameOr("Alice", "alice"); got != "Alice" {
		t.Errorf("name = %q, want Alice", got)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{users.ErrEmailTaken, http.StatusConflict},
		{users.ErrUserIDTaken, http.StatusConflict},
		{users.ErrInvalidCredentials, http.StatusUnauthorized},
		{auth.ErrInvalidToken, http.StatusUnauthorized},
		{users.ErrNotFound, http.StatusNotFound},
		{users.ErrInvalidModel, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := users.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
