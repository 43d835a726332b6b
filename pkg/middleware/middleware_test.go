package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/yumina0616/PromptLab-sub000/pkg/middleware"
)

func TestApplyOrder(t *testing.T) {
	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	mw := middleware.New()
	mw.Use(tag("metrics"))
	mw.Use(tag("cors"))
	mw.Use(tag("auth"))

	handler := mw.Apply(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	want := []string{"metrics", "cors", "auth", "handler"}
	if !slices.Equal(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestCORS(t *testing.T) {
	enabled := &middleware.CORSConfig{
		Enabled:          true,
		Origins:          []string{"http://localhost:5173"},
		AllowedMethods:   []string{"GET", "PATCH"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           600,
	}

	tests := []struct {
		name        string
		cfg         *middleware.CORSConfig
		method      string
		origin      string
		wantOrigin  string
		wantCalled  bool
		wantMethods string
	}{
		{"disabled", &middleware.CORSConfig{}, "GET", "http://localhost:5173", "", true, ""},
		{"allowed origin", enabled, "GET", "http://localhost:5173", "http://localhost:5173", true, "GET, PATCH"},
		{"denied origin", enabled, "GET", "http://evil.test", "", true, ""},
		{"preflight short-circuits", enabled, "OPTIONS", "http://localhost:5173", "http://localhost:5173", false, "GET, PATCH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := middleware.CORS(tt.cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/prompts", nil)
			req.Header.Set("Origin", tt.origin)
			handler.ServeHTTP(rec, req)

			if called != tt.wantCalled {
				t.Errorf("handler called = %v, want %v", called, tt.wantCalled)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("allow-origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := rec.Header().Get("Access-Control-Allow-Methods"); got != tt.wantMethods {
				t.Errorf("allow-methods = %q, want %q", got, tt.wantMethods)
			}
			if tt.wantOrigin != "" {
				if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
					t.Error("allow-credentials should be set")
				}
				if rec.Header().Get("Access-Control-Max-Age") != "600" {
					t.Errorf("max-age = %q", rec.Header().Get("Access-Control-Max-Age"))
				}
			}
		})
	}
}

func TestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := middleware.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/prompts?limit=5", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log: %v", err)
	}
	if entry["status"] != float64(http.StatusTeapot) {
		t.Errorf("logged status = %v", entry["status"])
	}
	if entry["uri"] != "/prompts?limit=5" {
		t.Errorf("logged uri = %v", entry["uri"])
	}
}

func TestStatusRecorderDefault(t *testing.T) {
	rec := middleware.NewStatusRecorder(httptest.NewRecorder())
	rec.Write([]byte("ok"))
	if rec.Status != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Status)
	}
}

func TestCORSConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := middleware.CORSConfig{}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if !slices.Contains(cfg.AllowedMethods, "PATCH") {
			t.Errorf("allowed methods %v should include PATCH", cfg.AllowedMethods)
		}
		if cfg.MaxAge != 3600 {
			t.Errorf("max_age = %d, want 3600", cfg.MaxAge)
		}
	})

	t.Run("env", func(t *testing.T) {
		t.Setenv("TEST_CORS_ENABLED", "true")
		t.Setenv("TEST_CORS_ORIGINS", "http://a.test, ,http://b.test")

		cfg := middleware.CORSConfig{}
		err := cfg.Finalize(&middleware.CORSEnv{
			Enabled: "TEST_CORS_ENABLED",
			Origins: "TEST_CORS_ORIGINS",
		})
		if err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if !cfg.Enabled || !slices.Equal(cfg.Origins, []string{"http://a.test", "http://b.test"}) {
			t.Errorf("got %+v", cfg)
		}
	})

	t.Run("merge", func(t *testing.T) {
		base := middleware.CORSConfig{Origins: []string{"http://base.test"}, MaxAge: 3600}
		base.Merge(&middleware.CORSConfig{Enabled: true, MaxAge: 60})
		if !base.Enabled || base.MaxAge != 60 || base.Origins[0] != "http://base.test" {
			t.Errorf("merged = %+v", base)
		}
	})
}
