package spec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Registry is a keyed store of definitions. Keys are unique and lookups fail
// instead of defaulting.
type Registry[T any] struct {
	name    string
	entries map[string]T
	check   func(key string, value T) error
}

func newRegistry[T any](name string, check func(string, T) error) *Registry[T] {
	return &Registry[T]{name: name, entries: make(map[string]T), check: check}
}

// Name is the registry label used in error messages.
func (r *Registry[T]) Name() string { return r.name }

// Define adds value under key. Redefining a key is an error.
func (r *Registry[T]) Define(key string, value T) error {
	if strings.TrimSpace(key) == "" {
		return invalidDef(r.name, key, "empty key")
	}
	if strings.TrimSpace(key) != key {
		return invalidDef(r.name, key, "key has surrounding whitespace")
	}
	if _, exists := r.entries[key]; exists {
		return duplicateKey(r.name, key)
	}
	if r.check != nil {
		if err := r.check(key, value); err != nil {
			return err
		}
	}
	r.entries[key] = value
	return nil
}

// MustDefine is Define for static tables; it panics on error.
func (r *Registry[T]) MustDefine(key string, value T) {
	if err := r.Define(key, value); err != nil {
		panic(err)
	}
}

// Get returns the entry for key or an UndefinedReference error.
func (r *Registry[T]) Get(key string) (T, error) {
	v, ok := r.entries[key]
	if !ok {
		var zero T
		return zero, undefinedRef(r.name, key)
	}
	return v, nil
}

func (r *Registry[T]) Has(key string) bool {
	_, ok := r.entries[key]
	return ok
}

func (r *Registry[T]) Len() int { return len(r.entries) }

// Keys returns the defined keys sorted, for diagnostics.
func (r *Registry[T]) Keys() []string {
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type (
	ParameterRegistry = Registry[*ParameterDef]
	SchemaRegistry    = Registry[*SchemaDef]
	ExampleRegistry   = Registry[*ExampleDef]
)

func NewParameterRegistry() *ParameterRegistry {
	return newRegistry("parameters", checkParameter)
}

func NewSchemaRegistry() *SchemaRegistry {
	return newRegistry("schemas", func(key string, s *SchemaDef) error {
		if s == nil {
			return invalidDef("schemas", key, "nil schema")
		}
		if err := s.wellFormed(""); err != nil {
			return invalidDef("schemas", key, "%v", err)
		}
		return nil
	})
}

func NewExampleRegistry() *ExampleRegistry {
	return newRegistry("examples", func(key string, e *ExampleDef) error {
		if e == nil {
			return invalidDef("examples", key, "nil example")
		}
		return nil
	})
}

func checkParameter(key string, p *ParameterDef) error {
	if p == nil {
		return invalidDef("parameters", key, "nil parameter")
	}
	if err := validate.Struct(p); err != nil {
		return fromValidationErrors("parameters", key, err)
	}
	return nil
}

// wellFormed checks the shape rules recursively. path locates the failing node.
func (s *SchemaDef) wellFormed(path string) error {
	at := func(msg string) error {
		if path == "" {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("%s: %s", path, msg)
	}
	if s == nil {
		return at("nil schema")
	}
	if s.AnyOf != nil && len(s.AnyOf) == 0 {
		return at("empty union")
	}
	if len(s.AnyOf) > 0 {
		if s.Type != "" || s.Items != nil || len(s.Properties) > 0 {
			return at("union cannot also declare a type")
		}
		for i, alt := range s.AnyOf {
			if err := alt.wellFormed(fmt.Sprintf("%sanyOf[%d]", prefix(path), i)); err != nil {
				return err
			}
		}
		return nil
	}
	switch s.Type {
	case TypeString, TypeNumber, TypeInteger, TypeBoolean:
		if s.Items != nil || len(s.Properties) > 0 {
			return at(fmt.Sprintf("%s schema cannot have items or properties", s.Type))
		}
		for _, v := range s.Enum {
			if !primitiveMatches(s.Type, v) {
				return at(fmt.Sprintf("enum value %v is not a %s", v, s.Type))
			}
		}
	case TypeObject:
		if s.Items != nil {
			return at("object schema cannot have items")
		}
		names := make([]string, 0, len(s.Properties))
		for name := range s.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := s.Properties[name].wellFormed(prefix(path) + name); err != nil {
				return err
			}
		}
	case TypeArray:
		if s.Items == nil {
			return at("array schema requires items")
		}
		if err := s.Items.wellFormed(prefix(path) + "items"); err != nil {
			return err
		}
	case "":
		return at("missing type")
	default:
		return at(fmt.Sprintf("unknown type %q", s.Type))
	}
	return nil
}

func prefix(path string) string {
	if path == "" {
		return ""
	}
	return path + "."
}

func primitiveMatches(typ string, v any) bool {
	switch typ {
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeBoolean:
		_, ok := v.(bool)
		return ok
	case TypeInteger:
		switch n := v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		case float32:
			return n == float32(int64(n))
		case float64:
			return n == float64(int64(n))
		}
		return false
	case TypeNumber:
		switch v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
			return true
		}
		return false
	}
	return false
}

// Registries is one independent set of registries for a single generation run.
type Registries struct {
	Parameters *ParameterRegistry
	Schemas    *SchemaRegistry
	Examples   *ExampleRegistry
	Responses  *ResponseTemplates
}

// NewRegistries builds empty parameter/schema/example registries and the
// standard error response templates on top of them.
func NewRegistries() (*Registries, error) {
	params := NewParameterRegistry()
	schemas := NewSchemaRegistry()
	examples := NewExampleRegistry()
	responses, err := NewResponseTemplates(schemas, examples)
	if err != nil {
		return nil, err
	}
	return &Registries{
		Parameters: params,
		Schemas:    schemas,
		Examples:   examples,
		Responses:  responses,
	}, nil
}
