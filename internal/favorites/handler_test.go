package favorites_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/yumina0616/PromptLab-sub000/internal/access"
	"github.com/yumina0616/PromptLab-sub000/internal/favorites"
	"github.com/yumina0616/PromptLab-sub000/pkg/auth"
	"github.com/yumina0616/PromptLab-sub000/pkg/routes"
)

type mockSystem struct {
	addFn    func(ctx context.Context, userID, promptID, versionID uuid.UUID) (*favorites.Favorite, error)
	removeFn func(ctx context.Context, userID, promptID, versionID uuid.UUID) error
	countFn  func(ctx context.Context, versionID uuid.UUID) (int, error)
}

func (m *mockSystem) Handler() *favorites.Handler {
	return favorites.NewHandler(m, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (m *mockSystem) Add(ctx context.Context, userID, promptID, versionID uuid.UUID) (*favorites.Favorite, error) {
	return m.addFn(ctx, userID, promptID, versionID)
}

func (m *mockSystem) Remove(ctx context.Context, userID, promptID, versionID uuid.UUID) error {
	return m.removeFn(ctx, userID, promptID, versionID)
}

func (m *mockSystem) Count(ctx context.Context, versionID uuid.UUID) (int, error) {
	return m.countFn(ctx, versionID)
}

var (
	userID    = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	promptID  = uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")
	versionID = uuid.MustParse("660e8400-e29b-41d4-a716-446655440000")
	path      = "/prompts/" + promptID.String() + "/versions/" + versionID.String() + "/favorite"
)

func setupMux(sys *mockSystem) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler().Routes())
	return mux
}

func serve(mux *http.ServeMux, method, target string, user uuid.UUID) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if user != uuid.Nil {
		req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: user}))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandlerAdd(t *testing.T) {
	starred := map[uuid.UUID]bool{}
	sys := &mockSystem{
		addFn: func(_ context.Context, uid, pid, vid uuid.UUID) (*favorites.Favorite, error) {
			if pid != promptID || vid != versionID {
				t.Fatalf("ids = %s/%s", pid, vid)
			}
			if starred[uid] {
				return nil, favorites.ErrAlreadyStarred
			}
			starred[uid] = true
			return &favorites.Favorite{UserID: uid, PromptVersionID: vid}, nil
		},
		countFn: func(_ context.Context, vid uuid.UUID) (int, error) {
			if vid != versionID {
				t.Fatalf("count version = %s", vid)
			}
			return len(starred), nil
		},
	}
	mux := setupMux(sys)

	rec := serve(mux, "POST", path, userID)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var status favorites.Status
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.Starred {
		t.Error("starred = false, want true")
	}
	if status.StarCount != 1 {
		t.Errorf("star_count = %d, want 1", status.StarCount)
	}

	if rec := serve(mux, "POST", path, userID); rec.Code != http.StatusConflict {
		t.Errorf("second star status = %d, want 409", rec.Code)
	}
}

func TestHandlerAddCountFailure(t *testing.T) {
	sys := &mockSystem{
		addFn: func(_ context.Context, uid, _, vid uuid.UUID) (*favorites.Favorite, error) {
			return &favorites.Favorite{UserID: uid, PromptVersionID: vid}, nil
		},
		countFn: func(context.Context, uuid.UUID) (int, error) {
			return 0, errors.New("connection reset")
		},
	}

	rec := serve(setupMux(sys), "POST", path, userID)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["starred"] != true {
		t.Errorf("starred = %v, want true", body["starred"])
	}
	if _, ok := body["star_count"]; ok {
		t.Errorf("star_count present after count failure: %v", body)
	}
}

func TestHandlerErrors(t *testing.T) {
	sys := &mockSystem{
		addFn: func(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (*favorites.Favorite, error) {
			return nil, access.ErrForbidden
		},
		removeFn: func(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) error {
			return favorites.ErrNotStarred
		},
	}
	mux := setupMux(sys)

	tests := []struct {
		name       string
		method     string
		target     string
		user       uuid.UUID
		wantStatus int
	}{
		{"anonymous", "POST", path, uuid.Nil, http.StatusUnauthorized},
		{"forbidden prompt", "POST", path, userID, http.StatusForbidden},
		{"remove missing", "DELETE", path, userID, http.StatusNotFound},
		{"bad version id", "POST", "/prompts/" + promptID.String() + "/versions/x/favorite", userID, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := serve(mux, tt.method, tt.target, tt.user); rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{favorites.ErrAlreadyStarred, http.StatusConflict},
		{favorites.ErrVersionNotFound, http.StatusNotFound},
		{favorites.ErrNotStarred, http.StatusNotFound},
		{access.ErrPromptNotFound, http.StatusNotFound},
		{access.ErrUnauthorized, http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := favorites.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
