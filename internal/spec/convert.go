package spec

import (
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// toOpenAPISchema converts a SchemaDef into a kin-openapi schema. Schemas are
// always inlined; registry keys never appear as $ref in the output.
func toOpenAPISchema(s *SchemaDef) *openapi3.Schema {
	if s == nil {
		return nil
	}
	out := &openapi3.Schema{
		Type:        s.Type,
		Description: strings.TrimSpace(s.Description),
	}
	if len(s.Enum) > 0 {
		out.Enum = enumValues(s.Enum)
	}
	if s.Items != nil {
		out.Items = openapi3.NewSchemaRef("", toOpenAPISchema(s.Items))
	}
	if len(s.Properties) > 0 {
		out.Properties = make(openapi3.Schemas, len(s.Properties))
		keys := make([]string, 0, len(s.Properties))
		for name := range s.Properties {
			keys = append(keys, name)
		}
		sort.Strings(keys)
		for _, name := range keys {
			out.Properties[name] = openapi3.NewSchemaRef("", toOpenAPISchema(s.Properties[name]))
		}
	}
	for _, alt := range s.AnyOf {
		out.AnyOf = append(out.AnyOf, openapi3.NewSchemaRef("", toOpenAPISchema(alt)))
	}
	return out
}

// enumValues returns the enum in the same JSON-decoded form examples take,
// so integer enums compare equal to float64 example values.
func enumValues(enum []any) []any {
	if normalized, err := normalizeExample(enum); err == nil {
		if values, ok := normalized.([]any); ok {
			return values
		}
	}
	return append([]any(nil), enum...)
}

func toOpenAPIParameter(p *ParameterDef) *openapi3.Parameter {
	return &openapi3.Parameter{
		Name:        p.Name,
		In:          p.In,
		Description: strings.TrimSpace(p.Description),
		Required:    p.Required,
		Schema:      openapi3.NewSchemaRef("", &openapi3.Schema{Type: p.Type}),
	}
}

// resolver turns key-based definitions into kin-openapi values. Missing keys
// are collected rather than returned so the integrity pass can report all of them.
type resolver struct {
	reg      *Registries
	dangling []error
}

func (r *resolver) miss(err error, endpoint string) {
	if se, ok := err.(*SpecError); ok {
		r.dangling = append(r.dangling, &SpecError{
			Code:     Integrity,
			Message:  endpoint + ": dangling reference " + se.Registry + "/" + se.Key,
			Registry: se.Registry,
			Key:      se.Key,
			Cause:    se,
		})
		return
	}
	r.dangling = append(r.dangling, err)
}

func (r *resolver) operation(ep *EndpointDef) *openapi3.Operation {
	op := &openapi3.Operation{
		Summary:     strings.TrimSpace(ep.Summary),
		Description: strings.TrimSpace(ep.Description),
		Responses:   make(openapi3.Responses, len(ep.Responses)),
	}
	for _, key := range ep.Parameters {
		p, err := r.reg.Parameters.Get(key)
		if err != nil {
			r.miss(err, ep.ID())
			continue
		}
		op.Parameters = append(op.Parameters, &openapi3.ParameterRef{Value: toOpenAPIParameter(p)})
	}
	codes := make([]string, 0, len(ep.Responses))
	for code := range ep.Responses {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		op.Responses[code] = &openapi3.ResponseRef{Value: r.response(ep, ep.Responses[code])}
	}
	return op
}

func (r *resolver) response(ep *EndpointDef, t *ResponseTemplate) *openapi3.Response {
	resp := openapi3.NewResponse().WithDescription(t.Description)
	if len(t.Content) == 0 {
		return resp
	}
	content := make(openapi3.Content, len(t.Content))
	for _, m := range t.Content {
		schema, serr := r.reg.Schemas.Get(m.Key)
		if serr != nil {
			r.miss(serr, ep.ID())
		}
		example, eerr := r.reg.Examples.Get(m.Key)
		if eerr != nil {
			r.miss(eerr, ep.ID())
		}
		if serr != nil || eerr != nil {
			continue
		}
		value, err := normalizeExample(example.Value)
		if err != nil {
			r.dangling = append(r.dangling, &SpecError{
				Code:     Serialization,
				Message:  ep.ID() + ": example " + m.Key + " is not representable: " + err.Error(),
				Registry: "examples",
				Key:      m.Key,
				Cause:    err,
			})
			continue
		}
		content[m.MediaType] = &openapi3.MediaType{
			Schema:  openapi3.NewSchemaRef("", toOpenAPISchema(schema)),
			Example: value,
		}
	}
	resp.Content = content
	return resp
}

func toOpenAPISecurityScheme(s SecurityScheme) *openapi3.SecurityScheme {
	out := &openapi3.SecurityScheme{Type: s.Type}
	switch s.Type {
	case "http":
		out.Scheme = s.Scheme
	case "apiKey":
		out.In = s.In
		out.Name = s.Header
	}
	return out
}
