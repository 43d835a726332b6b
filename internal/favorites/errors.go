package favorites

import (
	"errors"
	"net/http"

	"github.com/yumina0616/PromptLab-sub000/internal/access"
	"github.com/yumina0616/PromptLab-sub000/pkg/errcode"
)

var (
	ErrVersionNotFound = errcode.New("NOT_FOUND", "version not found")
	ErrNotStarred      = errcode.New("NOT_FOUND", "version is not starred")
	ErrAlreadyStarred  = errcode.New("ALREADY_STARRED", "version already starred")
	ErrInvalidID       = errcode.New("VALIDATION_ERROR", "invalid id")
)

// MapHTTPStatus maps favorite domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if status := access.MapHTTPStatus(err); status != 0 {
		return status
	}
	switch {
	case errors.Is(err, ErrVersionNotFound), errors.Is(err, ErrNotStarred):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyStarred):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidID):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
