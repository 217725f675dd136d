package spec

import (
	"fmt"
	"regexp"
	"strings"
)

// SuccessResponse describes the endpoint-specific 2xx response. Each media
// type names a key that must exist in both the schema and example registries.
type SuccessResponse struct {
	Status      string // defaults to "200"
	Description string
	Content     []MediaRef
}

// JSON is a SuccessResponse with a single application/json body under key.
func JSON(description, key string) SuccessResponse {
	return SuccessResponse{Description: description, Content: []MediaRef{{MediaType: MediaTypeJSON, Key: key}}}
}

// Composer builds EndpointDefs from registry entries.
type Composer struct {
	reg *Registries
}

func NewComposer(reg *Registries) *Composer {
	return &Composer{reg: reg}
}

var routeParamRe = regexp.MustCompile(`\{([^{}/]+)\}`)

// Compose resolves every reference the endpoint makes and returns its definition.
// It has no side effects.
func (c *Composer) Compose(route string, method HttpMethod, summary, description string, parameterKeys []string, success SuccessResponse, includeStandardErrors bool) (*EndpointDef, error) {
	route = strings.TrimSpace(route)
	method = HttpMethod(strings.ToLower(string(method)))
	id := string(method) + " " + route
	if !strings.HasPrefix(route, "/") {
		return nil, invalidDef("endpoints", id, "route must start with /")
	}
	if !method.valid() {
		return nil, invalidDef("endpoints", id, "unsupported method %q", method)
	}

	// Parameters: resolve, reject duplicate (in, name) pairs, collect path names.
	seen := make(map[string]string, len(parameterKeys))
	pathParams := make(map[string]struct{})
	for _, key := range parameterKeys {
		p, err := c.reg.Parameters.Get(key)
		if err != nil {
			return nil, err
		}
		pk := paramKey(p.In, p.Name)
		if prev, dup := seen[pk]; dup {
			return nil, invalidDef("endpoints", id, "parameters %q and %q both declare %s", prev, key, pk)
		}
		seen[pk] = key
		if p.In == "path" {
			pathParams[p.Name] = struct{}{}
		}
	}
	placeholders := make(map[string]struct{})
	for _, m := range routeParamRe.FindAllStringSubmatch(route, -1) {
		name := m[1]
		placeholders[name] = struct{}{}
		if _, ok := pathParams[name]; !ok {
			return nil, invalidDef("endpoints", id, "route placeholder {%s} has no path parameter", name)
		}
	}
	for name := range pathParams {
		if _, ok := placeholders[name]; !ok {
			return nil, invalidDef("endpoints", id, "path parameter %q does not appear in the route", name)
		}
	}

	// Success response: schema and example must both exist and agree.
	status := strings.TrimSpace(success.Status)
	if status == "" {
		status = "200"
	}
	if !strings.HasPrefix(status, "2") {
		return nil, invalidDef("endpoints", id, "success status %s is not 2xx", status)
	}
	for _, m := range success.Content {
		if err := c.pair(m.Key); err != nil {
			return nil, err
		}
	}

	ep := &EndpointDef{
		Route:       route,
		Method:      method,
		Summary:     summary,
		Description: description,
		Parameters:  append([]string(nil), parameterKeys...),
		Responses: map[string]*ResponseTemplate{
			status: {
				Status:      status,
				Description: success.Description,
				Content:     append([]MediaRef(nil), success.Content...),
			},
		},
	}
	if includeStandardErrors {
		for _, t := range c.reg.Responses.Standard() {
			ep.Responses[t.Status] = t
		}
	}
	return ep, nil
}

// pair checks that key names both a schema and an example and that they agree.
func (c *Composer) pair(key string) error {
	hasSchema := c.reg.Schemas.Has(key)
	hasExample := c.reg.Examples.Has(key)
	switch {
	case !hasSchema && !hasExample:
		return undefinedRef("schemas", key)
	case !hasExample:
		return &SpecError{
			Code:     SchemaExampleMismatch,
			Message:  fmt.Sprintf("response %q has a schema but no example", key),
			Registry: "examples",
			Key:      key,
		}
	case !hasSchema:
		return &SpecError{
			Code:     SchemaExampleMismatch,
			Message:  fmt.Sprintf("response %q has an example but no schema", key),
			Registry: "schemas",
			Key:      key,
		}
	}
	schema, _ := c.reg.Schemas.Get(key)
	example, _ := c.reg.Examples.Get(key)
	return checkAgreement(key, schema, example)
}

func paramKey(in, name string) string { return in + ":" + name }
