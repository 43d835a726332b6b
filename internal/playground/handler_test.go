package playground_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yumina0616/PromptLab-sub000/internal/access"
	"github.com/yumina0616/PromptLab-sub000/internal/aimodels"
	"github.com/yumina0616/PromptLab-sub000/internal/playground"
	"github.com/yumina0616/PromptLab-sub000/pkg/auth"
	"github.com/yumina0616/PromptLab-sub000/pkg/handlers"
	"github.com/yumina0616/PromptLab-sub000/pkg/pagination"
	"github.com/yumina0616/PromptLab-sub000/pkg/providers"
	"github.com/yumina0616/PromptLab-sub000/pkg/ratelimit"
	"github.com/yumina0616/PromptLab-sub000/pkg/routes"
)

type mockSystem struct {
	runFn    func(ctx context.Context, userID uuid.UUID, cmd playground.RunCommand) (*playground.RunResult, error)
	listFn   func(ctx context.Context, userID uuid.UUID, page pagination.PageRequest) (*pagination.PageResult[playground.History], error)
	findFn   func(ctx context.Context, userID, id uuid.UUID) (*playground.History, error)
	deleteFn func(ctx context.Context, userID, id uuid.UUID) error
}

func (m *mockSystem) Handler() *playground.Handler {
	return playground.NewHandler(
		m,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
	)
}

func (m *mockSystem) Run(ctx context.Context, userID uuid.UUID, cmd playground.RunCommand) (*playground.RunResult, error) {
	return m.runFn(ctx, userID, cmd)
}

func (m *mockSystem) ListHistory(ctx context.Context, userID uuid.UUID, page pagination.PageRequest) (*pagination.PageResult[playground.History], error) {
	return m.listFn(ctx, userID, page)
}

func (m *mockSystem) FindHistory(ctx context.Context, userID, id uuid.UUID) (*playground.History, error) {
	return m.findFn(ctx, userID, id)
}

func (m *mockSystem) DeleteHistory(ctx context.Context, userID, id uuid.UUID) error {
	return m.deleteFn(ctx, userID, id)
}

func setupMux(sys *mockSystem) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler().Routes())
	return mux
}

func withUser(req *http.Request, id uuid.UUID) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: id}))
}

func TestHandlerRun(t *testing.T) {
	userID := uuid.New()
	var got playground.RunCommand

	sys := &mockSystem{
		runFn: func(_ context.Context, uid uuid.UUID, cmd playground.RunCommand) (*playground.RunResult, error) {
			if uid != userID {
				t.Errorf("user = %s, want %s", uid, userID)
			}
			got = cmd
			switch cmd.ModelID {
			case 2:
				return nil, ratelimit.ErrRateLimited
			case 3:
				return nil, fmt.Errorf("%w: gemini: 500", providers.ErrUpstream)
			case 4:
				return nil, access.ErrForbidden
			case 5:
				return nil, aimodels.ErrInactive
			}
			return &playground.RunResult{Output: "ok", HistoryID: uuid.New()}, nil
		},
	}
	mux := setupMux(sys)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"ok", `{"model_id":1,"prompt_text":"Hi {{name}}","model_params":{"temperature":0.3,"response_format":"json","variables":{"name":"Ada"}}}`, http.StatusOK, ""},
		{"missing model", `{"prompt_text":"hi"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"malformed", `{"model_id":`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"rate limited", `{"model_id":2,"prompt_text":"hi"}`, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"upstream", `{"model_id":3,"prompt_text":"hi"}`, http.StatusBadGateway, "UPSTREAM_ERROR"},
		{"source forbidden", `{"model_id":4,"prompt_text":"hi","source":{"prompt_id":"` + uuid.NewString() + `"}}`, http.StatusForbidden, "FORBIDDEN"},
		{"inactive model", `{"model_id":5,"prompt_text":"hi"}`, http.StatusBadRequest, "INVALID_MODEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withUser(httptest.NewRequest("POST", "/playground/run", strings.NewReader(tt.body)), userID)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCode == "" {
				return
			}
			var body handlers.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
		})
	}

	// model_params flattens generation params beside variables.
	req := withUser(httptest.NewRequest("POST", "/playground/run", strings.NewReader(tests[0].body)), userID)
	mux.ServeHTTP(httptest.NewRecorder(), req)
	if got.ModelParams.Temperature == nil || *got.ModelParams.Temperature != 0.3 {
		t.Errorf("temperature = %v, want 0.3", got.ModelParams.Temperature)
	}
	if !got.ModelParams.JSONMode() || got.ModelParams.Variables["name"] != "Ada" {
		t.Errorf("model params = %+v", got.ModelParams)
	}
}

func TestHandlerRunRequiresAuth(t *testing.T) {
	rec := httptest.NewRecorder()
	setupMux(&mockSystem{}).ServeHTTP(rec, httptest.NewRequest("POST", "/playground/run", strings.NewReader(`{}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestHandlerHistory(t *testing.T) {
	userID := uuid.New()
	known := uuid.New()

	sys := &mockSystem{
		listFn: func(_ context.Context, _ uuid.UUID, page pagination.PageRequest) (*pagination.PageResult[playground.History], error) {
			result := pagination.NewPageResult([]playground.History{{ID: known}}, 1, page.Page, page.Limit)
			return &result, nil
		},
		findFn: func(_ context.Context, _ uuid.UUID, id uuid.UUID) (*playground.History, error) {
			if id != known {
				return nil, playground.ErrNotFound
			}
			return &playground.History{ID: id, Usage: providers.Usage{TotalTokens: 12}}, nil
		},
		deleteFn: func(_ context.Context, _ uuid.UUID, id uuid.UUID) error {
			if id != known {
				return playground.ErrNotFound
			}
			return nil
		},
	}
	mux := setupMux(sys)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"list", "GET", "/playground/history?page=1&limit=10", http.StatusOK},
		{"list bad limit", "GET", "/playground/history?limit=1000", http.StatusBadRequest},
		{"find", "GET", "/playground/history/" + known.String(), http.StatusOK},
		{"find other", "GET", "/playground/history/" + uuid.NewString(), http.StatusNotFound},
		{"find bad id", "GET", "/playground/history/abc", http.StatusBadRequest},
		{"delete", "DELETE", "/playground/history/" + known.String(), http.StatusNoContent},
		{"delete other", "DELETE", "/playground/history/" + uuid.NewString(), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, withUser(httptest.NewRequest(tt.method, tt.path, nil), userID))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{playground.ErrSourceNotFound, http.StatusNotFound},
		{playground.ErrSourceMismatch, http.StatusBadRequest},
		{access.ErrUnauthorized, http.StatusUnauthorized},
		{aimodels.ErrNotFound, http.StatusNotFound},
		{ratelimit.ErrRateLimited, http.StatusTooManyRequests},
		{fmt.Errorf("call: %w", providers.ErrUpstream), http.StatusBadGateway},
	}

	for _, tt := range tests {
		if got := playground.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
