package access

import (
	"errors"
	"net/http"

	"github.com/yumina0616/PromptLab-sub000/pkg/auth"
	"github.com/yumina0616/PromptLab-sub000/pkg/errcode"
)

// Access errors shared by every prompt-scoped domain.
var (
	ErrUnauthorized   = auth.ErrUnauthorized
	ErrForbidden      = errcode.New("FORBIDDEN", "you do not have access to this prompt")
	ErrPromptNotFound = errcode.New("NOT_FOUND", "prompt not found")
)

// MapHTTPStatus maps access errors to HTTP status codes. It returns 0 for
// errors it does not recognize so callers can fall through to their own mapping.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrPromptNotFound):
		return http.StatusNotFound
	}
	return 0
}
