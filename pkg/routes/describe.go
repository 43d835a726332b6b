package routes

import (
	"net/http"
	"regexp"

	"github.com/yumina0616/PromptLab-sub000/pkg/openapi"
)

var pathParam = regexp.MustCompile(`\{([A-Za-z]+)\}`)

// Describe adds an operation to spec for every route in groups. basePath is
// prepended to each path. Path parameters missing from a route's operation
// are added from the pattern.
func Describe(spec *openapi.Spec, basePath string, groups ...Group) {
	for _, group := range groups {
		describeGroup(spec, basePath, nil, group)
	}
}

func describeGroup(spec *openapi.Spec, parentPrefix string, parentTags []string, group Group) {
	fullPrefix := parentPrefix + group.Prefix
	tags := group.Tags
	if len(tags) == 0 {
		tags = parentTags
	}

	for _, route := range group.Routes {
		path := fullPrefix + route.Pattern
		op := route.OpenAPI
		if op == nil {
			op = &openapi.Operation{Summary: route.Method + " " + path}
		}
		if len(op.Tags) == 0 {
			op.Tags = tags
		}
		if op.Responses == nil {
			op.Responses = map[int]*openapi.Response{
				defaultStatus(route.Method): {Description: "Success"},
			}
		}
		addPathParams(op, path)
		spec.AddOperation(path, route.Method, op)
	}

	for _, child := range group.Children {
		describeGroup(spec, fullPrefix, tags, child)
	}
}

func addPathParams(op *openapi.Operation, path string) {
	declared := make(map[string]bool, len(op.Parameters))
	for _, p := range op.Parameters {
		if p.In == "path" {
			declared[p.Name] = true
		}
	}
	for _, m := range pathParam.FindAllStringSubmatch(path, -1) {
		if !declared[m[1]] {
			op.Parameters = append(op.Parameters, openapi.PathParam(m[1], ""))
			declared[m[1]] = true
		}
	}
}

func defaultStatus(method string) int {
	switch method {
	case "POST":
		return http.StatusCreated
	case "DELETE":
		return http.StatusNoContent
	default:
		return http.StatusOK
	}
}
