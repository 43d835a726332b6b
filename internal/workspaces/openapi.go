package workspaces

import "github.com/yumina0616/PromptLab-sub000/pkg/openapi"

var createOp = &openapi.Operation{
	Summary:     "Create workspace",
	Description: "Creates a team workspace with the caller as admin. The slug is derived from the name when omitted.",
	RequestBody: openapi.RequestBodyJSON("CreateWorkspaceCommand", true),
	Responses: map[int]*openapi.Response{
		201: openapi.ResponseJSON("Created workspace", "Workspace"),
		400: openapi.ResponseRef("BadRequest"),
		401: openapi.ResponseRef("Unauthorized"),
		409: openapi.ResponseRef("Conflict"),
	},
}

var inviteOp = &openapi.Operation{
	Summary:     "Invite member",
	Description: "Adds a registered user to the workspace. Admin only.",
	RequestBody: openapi.RequestBodyJSON("InviteCommand", true),
	Responses: map[int]*openapi.Response{
		201: {Description: "Invite recorded and member added"},
		403: openapi.ResponseRef("Forbidden"),
		404: openapi.ResponseRef("NotFound"),
		409: openapi.ResponseRef("Conflict"),
	},
}

var shareOp = &openapi.Operation{
	Summary:     "Share prompt",
	Description: "Shares an owned prompt into the workspace and makes it private.",
	RequestBody: openapi.RequestBodyJSON("ShareCommand", false),
	Responses: map[int]*openapi.Response{
		201: {Description: "Share created"},
		403: openapi.ResponseRef("Forbidden"),
		404: openapi.ResponseRef("NotFound"),
		409: openapi.ResponseRef("Conflict"),
	},
}

// Schemas returns the component schemas referenced by workspace operations.
func Schemas() map[string]*openapi.Schema {
	roles := []any{"admin", "editor", "viewer"}
	return map[string]*openapi.Schema{
		"Workspace": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":          {Type: "string", Format: "uuid"},
				"kind":        {Type: "string", Enum: []any{"personal", "team"}},
				"name":        {Type: "string"},
				"slug":        {Type: "string"},
				"description": {Type: "string"},
				"role":        {Type: "string", Enum: roles},
			},
		},
		"CreateWorkspaceCommand": {
			Type:     "object",
			Required: []string{"name"},
			Properties: map[string]*openapi.Schema{
				"name":        {Type: "string"},
				"slug":        {Type: "string"},
				"description": {Type: "string"},
			},
		},
		"InviteCommand": {
			Type:     "object",
			Required: []string{"email"},
			Properties: map[string]*openapi.Schema{
				"email": {Type: "string", Format: "email"},
				"role":  {Type: "string", Enum: roles, Default: "viewer"},
			},
		},
		"ShareCommand": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"role": {Type: "string", Enum: []any{"viewer", "editor"}, Default: "viewer"},
			},
		},
	}
}
