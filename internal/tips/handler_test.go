package tips_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yumina0616/PromptLab-sub000/internal/tips"
	"github.com/yumina0616/PromptLab-sub000/pkg/auth"
	"github.com/yumina0616/PromptLab-sub000/pkg/handlers"
	"github.com/yumina0616/PromptLab-sub000/pkg/pagination"
	"github.com/yumina0616/PromptLab-sub000/pkg/routes"
)

type mockSystem struct {
	listFn    func(ctx context.Context, q tips.Query) (*pagination.PageResult[tips.Tip], error)
	findFn    func(ctx context.Context, id uuid.UUID) (*tips.Tip, error)
	createFn  func(ctx context.Context, cmd tips.CreateCommand) (*tips.Tip, error)
	uploadFn  func(ctx context.Context, cmd tips.UploadCommand) (*tips.Tip, error)
	deleteFn  func(ctx context.Context, id uuid.UUID) error
	suggestFn func(ctx context.Context, cmd tips.SuggestCommand) ([]tips.Suggestion, error)
	sourceFn  func(ctx context.Context, id uuid.UUID) (*tips.Document, error)
}

func (m *mockSystem) Handler(maxUploadSize int64) *tips.Handler {
	return tips.NewHandler(
		m,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
		maxUploadSize,
	)
}

func (m *mockSystem) List(ctx context.Context, q tips.Query) (*pagination.PageResult[tips.Tip], error) {
	return m.listFn(ctx, q)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*tips.Tip, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) Create(ctx context.Context, cmd tips.CreateCommand) (*tips.Tip, error) {
	return m.createFn(ctx, cmd)
}

func (m *mockSystem) Upload(ctx context.Context, cmd tips.UploadCommand) (*tips.Tip, error) {
	return m.uploadFn(ctx, cmd)
}

func (m *mockSystem) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func (m *mockSystem) Suggest(ctx context.Context, cmd tips.SuggestCommand) ([]tips.Suggestion, error) {
	return m.suggestFn(ctx, cmd)
}

func (m *mockSystem) Source(ctx context.Context, id uuid.UUID) (*tips.Document, error) {
	return m.sourceFn(ctx, id)
}

func setupMux(sys *mockSystem) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler(1<<20).Routes())
	return mux
}

func asAdmin(req *http.Request) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: uuid.New(), IsAdmin: true}))
}

func asUser(req *http.Request) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: uuid.New()}))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body handlers.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Code
}

func TestHandlerListIsPublic(t *testing.T) {
	var gotTag *string
	sys := &mockSystem{
		listFn: func(_ context.Context, q tips.Query) (*pagination.PageResult[tips.Tip], error) {
			gotTag = q.Tag
			result := pagination.NewPageResult([]tips.Tip{{ID: uuid.New(), Title: "Be specific"}}, 1, 1, 20)
			return &result, nil
		},
	}

	rec := httptest.NewRecorder()
	setupMux(sys).ServeHTTP(rec, httptest.NewRequest("GET", "/tips?tag=format", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotTag == nil || *gotTag != "format" {
		t.Errorf("tag = %v, want format", gotTag)
	}

	rec = httptest.NewRecorder()
	setupMux(sys).ServeHTTP(rec, httptest.NewRequest("GET", "/tips?limit=0", nil))
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "INVALID_LIMIT" {
		t.Errorf("status = %d, want 400 INVALID_LIMIT", rec.Code)
	}
}

func TestHandlerFind(t *testing.T) {
	sys := &mockSystem{
		findFn: func(context.Context, uuid.UUID) (*tips.Tip, error) {
			return nil, tips.ErrNotFound
		},
	}
	mux := setupMux(sys)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/tips/"+uuid.NewString(), nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/tips/not-a-uuid", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerCreateRequiresAdmin(t *testing.T) {
	sys := &mockSystem{
		createFn: func(_ context.Context, cmd tips.CreateCommand) (*tips.Tip, error) {
			return &tips.Tip{ID: uuid.New(), Title: cmd.Title, Body: cmd.Body, Tags: cmd.Tags}, nil
		},
	}
	mux := setupMux(sys)
	body := `{"title":"Name the format","body":"Say JSON when you want JSON.","tags":["format"]}`

	tests := []struct {
		name       string
		wrap       func(*http.Request) *http.Request
		wantStatus int
	}{
		{"anonymous", func(r *http.Request) *http.Request { return r }, http.StatusUnauthorized},
		{"member", asUser, http.StatusForbidden},
		{"admin", asAdmin, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.wrap(httptest.NewRequest("POST", "/tips", strings.NewReader(body)))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestHandlerUpload(t *testing.T) {
	var got tips.UploadCommand
	sys := &mockSystem{
		uploadFn: func(_ context.Context, cmd tips.UploadCommand) (*tips.Tip, error) {
			got = cmd
			return &tips.Tip{ID: uuid.New(), Title: cmd.Title, Body: string(cmd.Data)}, nil
		},
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("title", "Few-shot examples"); err != nil {
		t.Fatal(err)
	}
	if err := mw.WriteField("tags", "Examples, few-shot ,examples"); err != nil {
		t.Fatal(err)
	}
	fw, err := mw.CreateFormFile("file", "few-shot.md")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte("# Few-shot\n\nShow two or three examples.")); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := asAdmin(httptest.NewRequest("POST", "/tips/upload", &buf))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	setupMux(sys).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if got.Filename != "few-shot.md" || got.Title != "Few-shot examples" {
		t.Errorf("cmd = %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "examples" || got.Tags[1] != "few-shot" {
		t.Errorf("tags = %v, want [examples few-shot]", got.Tags)
	}
	if !strings.HasPrefix(got.ContentType, "text/plain") {
		t.Errorf("content type = %q, want sniffed text/plain", got.ContentType)
	}
}

func TestHandlerUploadMissingFile(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("title", "no file")
	_ = mw.Close()

	req := asAdmin(httptest.NewRequest("POST", "/tips/upload", &buf))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	setupMux(&mockSystem{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerUploadTooLarge(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "huge.md")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(bytes.Repeat([]byte("tip "), 1024)); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	mux := http.NewServeMux()
	routes.Register(mux, (&mockSystem{}).Handler(512).Routes())

	req := asAdmin(httptest.NewRequest("POST", "/tips/upload", &buf))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
	var body handlers.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Code != "FILE_TOO_LARGE" || !strings.Contains(body.Message, "512.0 B") {
		t.Errorf("body = %+v, want FILE_TOO_LARGE mentioning 512.0 B", body)
	}
}

func TestHandlerSuggest(t *testing.T) {
	sys := &mockSystem{
		suggestFn: func(_ context.Context, cmd tips.SuggestCommand) ([]tips.Suggestion, error) {
			return []tips.Suggestion{{Tip: tips.Tip{Title: "Be specific"}, Match: tips.MatchKeyword}}, nil
		},
	}
	mux := setupMux(sys)

	tests := []struct {
		name       string
		wrap       func(*http.Request) *http.Request
		body       string
		wantStatus int
	}{
		{"anonymous", func(r *http.Request) *http.Request { return r }, `{"text":"write a summary"}`, http.StatusUnauthorized},
		{"missing text", asUser, `{}`, http.StatusBadRequest},
		{"ok", asUser, `{"text":"write a summary","limit":2}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.wrap(httptest.NewRequest("POST", "/tips/suggest", strings.NewReader(tt.body)))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var got []tips.Suggestion
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(got) != 1 || got[0].Match != "keyword" {
				t.Errorf("suggestions = %+v", got)
			}
		})
	}
}

func TestHandlerSource(t *testing.T) {
	withSource := uuid.New()
	sys := &mockSystem{
		sourceFn: func(_ context.Context, id uuid.UUID) (*tips.Document, error) {
			if id != withSource {
				return nil, tips.ErrNoSource
			}
			return &tips.Document{
				Body:     io.NopCloser(strings.NewReader("# Be specific")),
				Filename: "be specific.txt",
			}, nil
		},
	}
	mux := setupMux(sys)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, asAdmin(httptest.NewRequest("GET", "/tips/"+withSource.String()+"/source", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "# Be specific" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="be specific.txt"` {
		t.Errorf("content disposition = %q", got)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, asAdmin(httptest.NewRequest("GET", "/tips/"+uuid.NewString()+"/source", nil)))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, asUser(httptest.NewRequest("GET", "/tips/"+withSource.String()+"/source", nil)))
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}
