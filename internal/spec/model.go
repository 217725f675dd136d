package spec

// Definition model shared by the registries, the composer and the assembler.

type HttpMethod string

const (
	GET     HttpMethod = "get"
	POST    HttpMethod = "post"
	PUT     HttpMethod = "put"
	DELETE  HttpMethod = "delete"
	PATCH   HttpMethod = "patch"
	HEAD    HttpMethod = "head"
	OPTIONS HttpMethod = "options"
	TRACE   HttpMethod = "trace"
)

// methodOrder is the order methods appear under a path in the emitted document.
var methodOrder = []HttpMethod{GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS, TRACE}

func (m HttpMethod) valid() bool {
	for _, known := range methodOrder {
		if m == known {
			return true
		}
	}
	return false
}

func (m HttpMethod) rank() int {
	for i, known := range methodOrder {
		if m == known {
			return i
		}
	}
	return len(methodOrder)
}

// Primitive type names accepted for parameters and scalar schemas.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeArray   = "array"
)

const MediaTypeJSON = "application/json"

// ParameterDef is a reusable request parameter.
type ParameterDef struct {
	Name        string `validate:"required"`
	In          string `validate:"required,oneof=path query header cookie"`
	Description string
	Required    bool   `validate:"required_if=In path"`
	Type        string `validate:"required,oneof=string number integer boolean"`
}

// SchemaDef is a JSON-Schema-like type descriptor. Exactly one shape applies:
// a primitive, an object with Properties, an array with Items, or a union in AnyOf.
type SchemaDef struct {
	Type        string
	Description string
	Properties  map[string]*SchemaDef
	Enum        []any
	Items       *SchemaDef
	AnyOf       []*SchemaDef
}

// ExampleDef is a literal payload paired with the SchemaDef of the same key.
type ExampleDef struct {
	Value any
}

// MediaRef points at the schema and example registered under Key.
type MediaRef struct {
	MediaType string
	Key       string
}

// ResponseTemplate describes one status code. It holds registry keys, never
// resolved values, so shared templates stay identical wherever they are used.
type ResponseTemplate struct {
	Status      string
	Description string
	Content     []MediaRef
}

// EndpointDef is one HTTP method on one route.
type EndpointDef struct {
	Route       string
	Method      HttpMethod
	Summary     string
	Description string
	Parameters  []string // ParameterRegistry keys, in order
	Responses   map[string]*ResponseTemplate
}

// ID identifies the endpoint as "method route".
func (e *EndpointDef) ID() string { return string(e.Method) + " " + e.Route }

type Info struct {
	Title       string
	Description string
	Version     string
}

type Server struct {
	URL         string
	Description string
}

// SecurityScheme is a named entry under components.securitySchemes.
type SecurityScheme struct {
	Name   string
	Type   string // http|apiKey|oauth2|openIdConnect
	Scheme string // for http: basic|bearer
	In     string // for apiKey
	Header string // for apiKey: parameter name
}

// PathEntry lists the methods registered for a route, in canonical order.
type PathEntry struct {
	Route   string
	Methods []HttpMethod
}
