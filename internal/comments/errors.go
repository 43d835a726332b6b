package comments

import (
	"errors"
	"net/http"

	"github.com/yumina0616/PromptLab-sub000/internal/access"
	"github.com/yumina0616/PromptLab-sub000/pkg/errcode"
	"github.com/yumina0616/PromptLab-sub000/pkg/handlers"
	"github.com/yumina0616/PromptLab-sub000/pkg/validation"
)

var (
	ErrNotFound        = errcode.New("NOT_FOUND", "comment not found")
	ErrVersionNotFound = errcode.New("NOT_FOUND", "version not found")
	ErrInvalidID       = errcode.New("VALIDATION_ERROR", "invalid id")
)

// MapHTTPStatus maps comment domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if status := access.MapHTTPStatus(err); status != 0 {
		return status
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrVersionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidID),
		errors.Is(err, validation.ErrInvalid),
		errors.Is(err, handlers.ErrInvalidBody):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
