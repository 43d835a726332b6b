package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yumina0616/PromptLab-sub000/pkg/errcode"
	"github.com/yumina0616/PromptLab-sub000/pkg/handlers"
)

func TestRespondJSON(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		data       any
		wantStatus int
	}{
		{
			name:       "200 with map",
			status:     http.StatusOK,
			data:       map[string]string{"key": "value"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "201 with struct",
			status:     http.StatusCreated,
			data:       struct{ Starred bool `json:"starred"` }{Starred: true},
			wantStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handlers.RespondJSON(rec, tt.status, tt.data)

			res := rec.Result()
			defer res.Body.Close()

			if res.StatusCode != tt.wantStatus {
				t.Errorf("status: got %d, want %d", res.StatusCode, tt.wantStatus)
			}
			if ct := res.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("content-type: got %s", ct)
			}

			body, _ := io.ReadAll(res.Body)
			var parsed map[string]any
			if err := json.Unmarshal(body, &parsed); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
		})
	}
}

func TestRespondError(t *testing.T) {
	errSlugTaken := errcode.New("SLUG_TAKEN", "slug already in use")

	tests := []struct {
		name     string
		status   int
		err      error
		wantCode string
		wantMsg  string
	}{
		{"plain error uses status default", http.StatusBadRequest, errors.New("invalid input"), "VALIDATION_ERROR", "invalid input"},
		{"coded error keeps code", http.StatusConflict, errSlugTaken, "SLUG_TAKEN", "slug already in use"},
		{"wrapped coded error", http.StatusConflict, fmt.Errorf("create workspace: %w", errSlugTaken), "SLUG_TAKEN", "create workspace: slug already in use"},
		{"server error", http.StatusInternalServerError, errors.New("boom"), "INTERNAL_ERROR", "boom"},
		{"upstream", http.StatusBadGateway, errors.New("provider down"), "UPSTREAM_ERROR", "provider down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&logs, nil))
			rec := httptest.NewRecorder()

			handlers.RespondError(rec, logger, tt.status, tt.err)

			if rec.Code != tt.status {
				t.Errorf("status: got %d, want %d", rec.Code, tt.status)
			}

			var body handlers.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != tt.status {
				t.Errorf("body status: got %d, want %d", body.Status, tt.status)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code: got %s, want %s", body.Code, tt.wantCode)
			}
			if body.Message != tt.wantMsg {
				t.Errorf("message: got %s, want %s", body.Message, tt.wantMsg)
			}

			logged := strings.Contains(logs.String(), "request failed")
			if wantLog := tt.status >= 500; logged != wantLog {
				t.Errorf("logged = %v, want %v", logged, wantLog)
			}
		})
	}
}

type visibility string

var errBadVisibility = errcode.New("INVALID_VISIBILITY", "bad visibility")

func (v *visibility) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s != "public" && s != "private" {
		return errBadVisibility
	}
	*v = visibility(s)
	return nil
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name       string     `json:"name"`
		Visibility visibility `json:"visibility"`
	}

	t.Run("decodes body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"a","visibility":"public"}`))
		got, err := handlers.DecodeJSON[payload](req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Name != "a" || got.Visibility != "public" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("malformed body wraps ErrInvalidBody", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{`))
		_, err := handlers.DecodeJSON[payload](req)
		if !errors.Is(err, handlers.ErrInvalidBody) {
			t.Errorf("err = %v, want ErrInvalidBody", err)
		}
	})

	t.Run("coded unmarshal error passes through", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"visibility":"secret"}`))
		_, err := handlers.DecodeJSON[payload](req)
		if !errors.Is(err, errBadVisibility) {
			t.Errorf("err = %v, want errBadVisibility", err)
		}
	})
}
