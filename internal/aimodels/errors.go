package aimodels

import (
	"errors"
	"net/http"

	"github.com/yumina0616/PromptLab-sub000/pkg/auth"
	"github.com/yumina0616/PromptLab-sub000/pkg/errcode"
	"github.com/yumina0616/PromptLab-sub000/pkg/handlers"
	"github.com/yumina0616/PromptLab-sub000/pkg/providers"
	"github.com/yumina0616/PromptLab-sub000/pkg/ratelimit"
	"github.com/yumina0616/PromptLab-sub000/pkg/validation"
)

var (
	ErrNotFound = errcode.New("NOT_FOUND", "ai model not found")
	ErrInactive = errcode.New("INVALID_MODEL", "ai model is not active")
)

// MapHTTPStatus maps model catalog and provider errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInactive),
		errors.Is(err, validation.ErrInvalid),
		errors.Is(err, handlers.ErrInvalidBody):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrAdminOnly):
		return http.StatusForbidden
	case errors.Is(err, ratelimit.ErrRateLimited):
		return http.StatusTooManyRequests
	}
	return providers.MapHTTPStatus(err)
}
