package prompts

import "github.com/yumina0616/PromptLab-sub000/pkg/openapi"

var listOp = &openapi.Operation{
	Summary:     "List prompts",
	Description: "Public prompts, or the caller's own prompts with owner=me.",
	Parameters: []*openapi.Parameter{
		openapi.QueryParam("q", "string", "Search name and description", false),
		openapi.QueryParam("tag", "string", "Tag name", false),
		openapi.QueryParam("category", "string", "Category code", false),
		openapi.QueryParam("owner", "string", "Set to me for the caller's prompts", false),
		openapi.QueryParam("visibility", "string", "Visibility filter, with owner=me", false),
		openapi.QueryParam("sort", "string", "recent, stars or popular", false),
		openapi.QueryParam("page", "integer", "Page number", false),
		openapi.QueryParam("limit", "integer", "Page size, 1 to 100", false),
	},
	Responses: map[int]*openapi.Response{
		200: {Description: "Page of prompts"},
		400: openapi.ResponseRef("BadRequest"),
		401: openapi.ResponseRef("Unauthorized"),
	},
}

var createOp = &openapi.Operation{
	Summary:     "Create prompt",
	Description: "Creates a prompt with version 1 and its model setting.",
	RequestBody: openapi.RequestBodyJSON("CreatePromptCommand", true),
	Responses: map[int]*openapi.Response{
		201: openapi.ResponseJSON("Created prompt", "CreatePromptResult"),
		400: openapi.ResponseRef("BadRequest"),
		401: openapi.ResponseRef("Unauthorized"),
	},
}

// Schemas returns the component schemas referenced by prompt operations.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"ModelSetting": {
			Type:     "object",
			Required: []string{"ai_model_id"},
			Properties: map[string]*openapi.Schema{
				"ai_model_id":       {Type: "integer", Example: 1},
				"temperature":       {Type: "number", Default: DefaultTemperature},
				"max_token":         {Type: "integer"},
				"top_p":             {Type: "number"},
				"frequency_penalty": {Type: "number"},
				"presence_penalty":  {Type: "number"},
			},
		},
		"CreatePromptCommand": {
			Type:     "object",
			Required: []string{"name", "content", "commit_message", "model_setting"},
			Properties: map[string]*openapi.Schema{
				"name":           {Type: "string"},
				"description":    {Type: "string"},
				"visibility":     {Type: "string", Enum: []any{"public", "private", "unlisted"}},
				"tags":           {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"category_code":  {Type: "string"},
				"content":        {Type: "string"},
				"commit_message": {Type: "string"},
				"is_draft":       {Type: "boolean"},
				"model_setting":  openapi.SchemaRef("ModelSetting"),
			},
		},
		"CreatePromptResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":                {Type: "string", Format: "uuid"},
				"owner_id":          {Type: "string", Format: "uuid"},
				"latest_version_id": {Type: "string", Format: "uuid"},
			},
		},
	}
}
