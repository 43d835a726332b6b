package openapi

import "maps"

var errorBody = map[string]*MediaType{
	"application/json": {Schema: SchemaRef("ErrorResponse")},
}

func errorResponse(description string) *Response {
	return &Response{Description: description, Content: errorBody}
}

// NewComponents creates Components with shared schemas and error responses.
func NewComponents() *Components {
	return &Components{
		Schemas: map[string]*Schema{
			"PageRequest": {
				Type: "object",
				Properties: map[string]*Schema{
					"page":   {Type: "integer", Description: "Page number (1-indexed)", Example: 1},
					"limit":  {Type: "integer", Description: "Results per page, at most the configured maximum", Example: 20},
					"search": {Type: "string", Description: "Search query"},
					"sort":   {Type: "string", Description: "Sort keyword or comma-separated fields"},
				},
			},
			"ErrorResponse": {
				Type:     "object",
				Required: []string{"status", "code", "message"},
				Properties: map[string]*Schema{
					"status":  {Type: "integer", Description: "HTTP status code", Example: 404},
					"code":    {Type: "string", Description: "Machine-readable error code", Example: "NOT_FOUND"},
					"message": {Type: "string", Description: "Human-readable error message"},
				},
			},
		},
		Responses: map[string]*Response{
			"BadRequest":      errorResponse("Invalid request"),
			"Unauthorized":    errorResponse("Authentication required"),
			"Forbidden":       errorResponse("Caller lacks access"),
			"NotFound":        errorResponse("Resource not found"),
			"Conflict":        errorResponse("Resource conflict"),
			"TooManyRequests": errorResponse("Rate limit exceeded"),
			"BadGateway":      errorResponse("Upstream provider failure"),
		},
	}
}

// AddSchemas merges the given schemas into the component schemas.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}

// AddResponses merges the given responses into the component responses.
func (c *Components) AddResponses(responses map[string]*Response) {
	maps.Copy(c.Responses, responses)
}
