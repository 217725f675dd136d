package spec

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// OpenAPIVersion is the version string written to the document.
const OpenAPIVersion = "3.0.0"

// Document is the assembled API description. Paths keeps registration order;
// the resolved kin-openapi tree is owned by the document and built once.
type Document struct {
	Info            Info
	SecuritySchemes []SecurityScheme
	Security        []string
	Servers         []Server
	Paths           []PathEntry

	api *openapi3.T
}

// OpenAPI returns the resolved kin-openapi tree.
func (d *Document) OpenAPI() *openapi3.T { return d.api }

// Endpoints returns the number of operations across all paths.
func (d *Document) Endpoints() int {
	n := 0
	for _, p := range d.Paths {
		n += len(p.Methods)
	}
	return n
}

// Assembler merges composed endpoints into a Document.
type Assembler struct {
	reg *Registries
}

func NewAssembler(reg *Registries) *Assembler {
	return &Assembler{reg: reg}
}

// Assemble groups endpoints by route, checks that every reference resolves and
// validates the result against OpenAPI 3.0. It returns either a complete
// Document or an error, never both.
func (a *Assembler) Assemble(ctx context.Context, info Info, schemes []SecurityScheme, security []string, servers []Server, endpoints []*EndpointDef) (*Document, error) {
	if strings.TrimSpace(info.Title) == "" || strings.TrimSpace(info.Version) == "" {
		return nil, &SpecError{Code: InvalidDefinition, Message: "document: info title and version are required"}
	}
	if len(servers) == 0 {
		return nil, &SpecError{Code: InvalidDefinition, Message: "document: at least one server is required"}
	}

	// Group by route, first registration wins the position.
	var order []string
	byRoute := make(map[string]map[HttpMethod]*EndpointDef)
	for _, ep := range endpoints {
		if ep == nil {
			continue
		}
		methods, ok := byRoute[ep.Route]
		if !ok {
			methods = make(map[HttpMethod]*EndpointDef)
			byRoute[ep.Route] = methods
			order = append(order, ep.Route)
		}
		if _, dup := methods[ep.Method]; dup {
			return nil, duplicateKey("endpoints", ep.ID())
		}
		if !ep.Method.valid() {
			return nil, invalidDef("endpoints", ep.ID(), "unsupported method %q", ep.Method)
		}
		methods[ep.Method] = ep
	}
	if len(order) == 0 {
		return nil, &SpecError{Code: InvalidDefinition, Message: "document: no endpoints"}
	}

	doc := &Document{
		Info:            info,
		SecuritySchemes: append([]SecurityScheme(nil), schemes...),
		Security:        append([]string(nil), security...),
		Servers:         append([]Server(nil), servers...),
	}
	api := &openapi3.T{
		OpenAPI: OpenAPIVersion,
		Info: &openapi3.Info{
			Title:       strings.TrimSpace(info.Title),
			Description: strings.TrimSpace(info.Description),
			Version:     strings.TrimSpace(info.Version),
		},
		Paths: make(openapi3.Paths, len(order)),
	}

	var dangling []error

	// Security schemes and the global requirement.
	if len(schemes) > 0 {
		api.Components = &openapi3.Components{SecuritySchemes: make(openapi3.SecuritySchemes, len(schemes))}
		for _, s := range schemes {
			if _, dup := api.Components.SecuritySchemes[s.Name]; dup {
				return nil, duplicateKey("securitySchemes", s.Name)
			}
			api.Components.SecuritySchemes[s.Name] = &openapi3.SecuritySchemeRef{Value: toOpenAPISecurityScheme(s)}
		}
	}
	for _, name := range security {
		if api.Components == nil || api.Components.SecuritySchemes[name] == nil {
			dangling = append(dangling, &SpecError{
				Code:     Integrity,
				Message:  "security: dangling reference securitySchemes/" + name,
				Registry: "securitySchemes",
				Key:      name,
			})
			continue
		}
		api.Security = append(api.Security, openapi3.SecurityRequirement{name: []string{}})
	}

	for _, s := range servers {
		api.Servers = append(api.Servers, &openapi3.Server{URL: s.URL, Description: s.Description})
	}

	// Resolve every operation; the resolver records each dangling key.
	res := &resolver{reg: a.reg}
	for _, route := range order {
		methods := byRoute[route]
		entry := PathEntry{Route: route}
		for m := range methods {
			entry.Methods = append(entry.Methods, m)
		}
		sort.Slice(entry.Methods, func(i, j int) bool { return entry.Methods[i].rank() < entry.Methods[j].rank() })

		item := &openapi3.PathItem{}
		for _, m := range entry.Methods {
			item.SetOperation(strings.ToUpper(string(m)), res.operation(methods[m]))
		}
		api.Paths[route] = item
		doc.Paths = append(doc.Paths, entry)
	}
	dangling = append(dangling, res.dangling...)

	if len(dangling) > 0 {
		code := Serialization
		for _, err := range dangling {
			if !errors.Is(err, ErrSerialization) {
				code = Integrity
				break
			}
		}
		return nil, &SpecError{
			Code:    code,
			Message: fmt.Sprintf("document: %d unresolved reference(s):\n%v", len(dangling), errors.Join(dangling...)),
			Cause:   errors.Join(dangling...),
		}
	}

	if err := api.Validate(ctx); err != nil {
		return nil, &SpecError{
			Code:    Validation,
			Message: fmt.Sprintf("document: not a valid OpenAPI %s document: %v", OpenAPIVersion, err),
			Cause:   err,
		}
	}

	doc.api = api
	return doc, nil
}
