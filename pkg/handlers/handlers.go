// Package handlers provides JSON response helpers shared by every domain handler.
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/yumina0616/PromptLab-sub000/pkg/errcode"
)

// ErrInvalidBody indicates a request body that is not valid JSON for the target type.
var ErrInvalidBody = errcode.New("VALIDATION_ERROR", "invalid request body")

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondJSON writes data as JSON with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError writes an ErrorResponse. The code is taken from the error chain
// when present, otherwise derived from the status. Server errors are logged.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	code := errcode.Of(err)
	if code == "" {
		code = errcode.Default(status)
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "code", code, "error", err)
	}

	RespondJSON(w, status, ErrorResponse{
		Status:  status,
		Code:    code,
		Message: err.Error(),
	})
}

// DecodeJSON decodes the request body into T. Coded errors raised by custom
// unmarshalers pass through unchanged; anything else wraps ErrInvalidBody.
func DecodeJSON[T any](r *http.Request) (T, error) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		if errcode.Of(err) != "" {
			return v, err
		}
		return v, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return v, nil
}
