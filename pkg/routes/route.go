package routes

import (
	"net/http"

	"github.com/yumina0616/PromptLab-sub000/pkg/openapi"
)

// Route binds an HTTP method and pattern to a handler. OpenAPI optionally
// documents the route; undocumented routes receive a generated summary.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	OpenAPI *openapi.Operation
}
