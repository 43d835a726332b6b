package playground

import (
	"errors"
	"net/http"

	"github.com/yumina0616/PromptLab-sub000/internal/access"
	"github.com/yumina0616/PromptLab-sub000/internal/aimodels"
	"github.com/yumina0616/PromptLab-sub000/pkg/errcode"
	"github.com/yumina0616/PromptLab-sub000/pkg/handlers"
	"github.com/yumina0616/PromptLab-sub000/pkg/pagination"
	"github.com/yumina0616/PromptLab-sub000/pkg/validation"
)

var (
	ErrNotFound       = errcode.New("NOT_FOUND", "history entry not found")
	ErrSourceNotFound = errcode.New("NOT_FOUND", "source version not found")
	ErrSourceMismatch = errcode.New("VALIDATION_ERROR", "prompt_version_id does not belong to prompt_id")
	ErrInvalidID      = errcode.New("VALIDATION_ERROR", "invalid id")
)

// MapHTTPStatus maps playground errors to HTTP status codes. Model catalog and
// provider failures map through aimodels.
func MapHTTPStatus(err error) int {
	if status := access.MapHTTPStatus(err); status != 0 {
		return status
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrSourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSourceMismatch),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, pagination.ErrInvalidLimit),
		errors.Is(err, validation.ErrInvalid),
		errors.Is(err, handlers.ErrInvalidBody):
		return http.StatusBadRequest
	}
	return aimodels.MapHTTPStatus(err)
}
