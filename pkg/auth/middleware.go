package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/yumina0616/PromptLab-sub000/pkg/handlers"
)

// Middleware resolves the request credential once and stores the Identity on the
// context. Requests without a credential pass through anonymously; a credential
// that fails verification is rejected with 401.
func Middleware(tokens *Tokens, cookieName string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := credential(r, cookieName)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := tokens.Verify(raw)
			if err != nil {
				handlers.RespondError(w, logger, http.StatusUnauthorized, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// Require wraps a handler so anonymous requests receive 401.
func Require(logger *slog.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			handlers.RespondError(w, logger, http.StatusUnauthorized, ErrUnauthorized)
			return
		}
		next(w, r)
	}
}

// RequireAdmin wraps a handler so only administrators reach it.
func RequireAdmin(logger *slog.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := FromContext(r.Context())
		if !ok {
			handlers.RespondError(w, logger, http.StatusUnauthorized, ErrUnauthorized)
			return
		}
		if !id.IsAdmin {
			handlers.RespondError(w, logger, http.StatusForbidden, ErrAdminOnly)
			return
		}
		next(w, r)
	}
}

func credential(r *http.Request, cookieName string) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookieName != "" {
		if c, err := r.Cookie(cookieName); err == nil {
			return c.Value
		}
	}
	return ""
}
