package users

import (
	"errors"
	"net/http"

	"github.com/yumina0616/PromptLab-sub000/pkg/auth"
	"github.com/yumina0616/PromptLab-sub000/pkg/errcode"
	"github.com/yumina0616/PromptLab-sub000/pkg/handlers"
	"github.com/yumina0616/PromptLab-sub000/pkg/validation"
)

var (
	ErrNotFound           = errcode.New("NOT_FOUND", "user not found")
	ErrEmailTaken         = errcode.New("EMAIL_TAKEN", "email already registered")
	ErrUserIDTaken        = errcode.New("USERID_TAKEN", "userid already taken")
	ErrInvalidCredentials = errcode.New("UNAUTHORIZED", "invalid email or password")
	ErrOIDCDisabled       = errcode.New("NOT_FOUND", "external sign-in is not configured")
	ErrInvalidModel       = errcode.New("INVALID_MODEL", "unknown ai model")
)

// MapHTTPStatus maps user domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrOIDCDisabled):
		return http.StatusNotFound
	case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrUserIDTaken):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, validation.ErrInvalid),
		errors.Is(err, handlers.ErrInvalidBody),
		errors.Is(err, ErrInvalidModel):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
