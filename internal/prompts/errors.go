package prompts

import (
	"errors"
	"net/http"

	"github.com/yumina0616/PromptLab-sub000/internal/access"
	"github.com/yumina0616/PromptLab-sub000/pkg/errcode"
	"github.com/yumina0616/PromptLab-sub000/pkg/handlers"
	"github.com/yumina0616/PromptLab-sub000/pkg/pagination"
	"github.com/yumina0616/PromptLab-sub000/pkg/validation"
)

// Domain errors for prompt and version operations.
var (
	ErrNotFound             = access.ErrPromptNotFound
	ErrVersionNotFound      = errcode.New("NOT_FOUND", "version not found")
	ErrInvalidID            = errcode.New("VALIDATION_ERROR", "invalid id")
	ErrInvalidCategory      = errcode.New("INVALID_CATEGORY", "unknown category code")
	ErrInvalidModel         = errcode.New("INVALID_MODEL", "unknown ai model")
	ErrInvalidSort          = errcode.New("INVALID_SORT", "sort must be recent, stars or popular")
	ErrInvalidVisibility    = errcode.New("VALIDATION_ERROR", "visibility must be public, private or unlisted")
	ErrInvalidLimit         = pagination.ErrInvalidLimit
	ErrPublishedImmutable   = errcode.New("INVALID_TRANSITION", "a published version cannot return to draft")
	ErrModelSettingRequired = errcode.New("VALIDATION_ERROR", "model_setting is required when the prompt has no versions")
	ErrSharedPrompt         = errcode.New("SHARED_PROMPT", "prompt is shared to a workspace and must stay private")
)

// MapHTTPStatus maps prompt domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if status := access.MapHTTPStatus(err); status != 0 {
		return status
	}
	if errors.Is(err, ErrVersionNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrSharedPrompt) {
		return http.StatusConflict
	}
	if errors.Is(err, validation.ErrInvalid) ||
		errors.Is(err, handlers.ErrInvalidBody) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidCategory) ||
		errors.Is(err, ErrInvalidModel) ||
		errors.Is(err, ErrInvalidSort) ||
		errors.Is(err, ErrInvalidVisibility) ||
		errors.Is(err, ErrInvalidLimit) ||
		errors.Is(err, ErrPublishedImmutable) ||
		errors.Is(err, ErrModelSettingRequired) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
