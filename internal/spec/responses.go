package spec

import (
	"sort"
)

// ErrorKey is the schema/example key shared by the standard error responses.
const ErrorKey = "error"

// Standard error status codes attached to most endpoints.
const (
	StatusBadRequest          = "400"
	StatusUnprocessableEntity = "422"
	StatusInternalServerError = "500"
)

// ResponseTemplates holds the cross-cutting error responses. Every endpoint
// that opts in receives the same *ResponseTemplate values.
type ResponseTemplates struct {
	templates map[string]*ResponseTemplate
}

// NewResponseTemplates defines the shared error schema and example and builds
// the 400/422/500 templates from them.
func NewResponseTemplates(schemas *SchemaRegistry, examples *ExampleRegistry) (*ResponseTemplates, error) {
	errSchema := &SchemaDef{
		Type: TypeObject,
		Properties: map[string]*SchemaDef{
			"error": {Type: TypeString},
		},
	}
	if err := schemas.Define(ErrorKey, errSchema); err != nil {
		return nil, err
	}
	if err := examples.Define(ErrorKey, &ExampleDef{Value: map[string]any{"error": "Error message"}}); err != nil {
		return nil, err
	}

	content := []MediaRef{{MediaType: MediaTypeJSON, Key: ErrorKey}}
	rt := &ResponseTemplates{templates: map[string]*ResponseTemplate{
		StatusBadRequest:          {Status: StatusBadRequest, Description: "Failed JSON parse", Content: content},
		StatusUnprocessableEntity: {Status: StatusUnprocessableEntity, Description: "Invalid request details", Content: content},
		StatusInternalServerError: {Status: StatusInternalServerError, Description: "Internal server error", Content: content},
	}}
	return rt, nil
}

// Get returns the template for a status code.
func (rt *ResponseTemplates) Get(status string) (*ResponseTemplate, error) {
	t, ok := rt.templates[status]
	if !ok {
		return nil, undefinedRef("responses", status)
	}
	return t, nil
}

// Standard returns the error templates ordered by status code.
func (rt *ResponseTemplates) Standard() []*ResponseTemplate {
	codes := make([]string, 0, len(rt.templates))
	for code := range rt.templates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	out := make([]*ResponseTemplate, 0, len(codes))
	for _, code := range codes {
		out = append(out, rt.templates[code])
	}
	return out
}
