package workspaces

import (
	"errors"
	"net/http"

	"github.com/yumina0616/PromptLab-sub000/internal/access"
	"github.com/yumina0616/PromptLab-sub000/pkg/errcode"
	"github.com/yumina0616/PromptLab-sub000/pkg/handlers"
	"github.com/yumina0616/PromptLab-sub000/pkg/validation"
)

// Domain errors for workspace operations.
var (
	ErrNotFound          = errcode.New("NOT_FOUND", "workspace not found")
	ErrForbidden         = errcode.New("FORBIDDEN", "insufficient workspace role")
	ErrSlugTaken         = errcode.New("SLUG_TAKEN", "slug already in use")
	ErrInvalidSlug       = errcode.New("VALIDATION_ERROR", "slug may contain only lowercase letters, digits and single hyphens")
	ErrInvalidID         = errcode.New("VALIDATION_ERROR", "invalid id")
	ErrAlreadyShared     = errcode.New("ALREADY_SHARED", "prompt already shared to this workspace")
	ErrShareNotFound     = errcode.New("NOT_FOUND", "prompt is not shared to this workspace")
	ErrUserNotFound      = errcode.New("NOT_FOUND", "no user registered with that email")
	ErrAlreadyMember     = errcode.New("ALREADY_MEMBER", "user is already a member")
	ErrMemberNotFound    = errcode.New("NOT_FOUND", "member not found")
	ErrPersonalWorkspace = errcode.New("PERSONAL_WORKSPACE", "personal workspaces cannot be deleted")
)

// MapHTTPStatus maps workspace domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if status := access.MapHTTPStatus(err); status != 0 {
		return status
	}
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrShareNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrMemberNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrSlugTaken),
		errors.Is(err, ErrAlreadyShared),
		errors.Is(err, ErrAlreadyMember):
		return http.StatusConflict
	case errors.Is(err, validation.ErrInvalid),
		errors.Is(err, handlers.ErrInvalidBody),
		errors.Is(err, ErrInvalidSlug),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrPersonalWorkspace):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
