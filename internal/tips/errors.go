package tips

import (
	"errors"
	"net/http"

	"github.com/yumina0616/PromptLab-sub000/pkg/auth"
	"github.com/yumina0616/PromptLab-sub000/pkg/errcode"
	"github.com/yumina0616/PromptLab-sub000/pkg/handlers"
	"github.com/yumina0616/PromptLab-sub000/pkg/pagination"
	"github.com/yumina0616/PromptLab-sub000/pkg/storage"
	"github.com/yumina0616/PromptLab-sub000/pkg/validation"
)

var (
	ErrNotFound     = errcode.New("NOT_FOUND", "tip not found")
	ErrNoSource     = errcode.New("NOT_FOUND", "tip has no uploaded source")
	ErrInvalidID    = errcode.New("VALIDATION_ERROR", "invalid id")
	ErrFileTooLarge = errcode.New("FILE_TOO_LARGE", "file exceeds maximum upload size")
	ErrInvalidFile  = errcode.New("VALIDATION_ERROR", "upload must be a non-empty text or markdown file")
)

// MapHTTPStatus maps tip domain errors to appropriate HTTP status codes.
// Blob errors fall through to the storage mapping.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrNoSource):
		return http.StatusNotFound
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, auth.ErrAdminOnly):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidFile),
		errors.Is(err, pagination.ErrInvalidLimit),
		errors.Is(err, validation.ErrInvalid),
		errors.Is(err, handlers.ErrInvalidBody):
		return http.StatusBadRequest
	}
	return storage.MapHTTPStatus(err)
}
