package spec

import (
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// normalizeExample converts a Go literal into its JSON-decoded form
// (float64, string, bool, []any, map[string]any) so it can be checked and
// marshaled without type surprises.
func normalizeExample(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// checkAgreement verifies that the example registered under key satisfies the
// schema registered under the same key.
func checkAgreement(key string, schema *SchemaDef, example *ExampleDef) error {
	value, err := normalizeExample(example.Value)
	if err != nil {
		return &SpecError{
			Code:     Serialization,
			Message:  fmt.Sprintf("examples: %q is not representable as JSON: %v", key, err),
			Registry: "examples",
			Key:      key,
			Cause:    err,
		}
	}
	if err := toOpenAPISchema(schema).VisitJSON(value, openapi3.MultiErrors()); err != nil {
		return &SpecError{
			Code:     SchemaExampleMismatch,
			Message:  fmt.Sprintf("examples: %q does not satisfy schema %q: %v", key, key, err),
			Registry: "examples",
			Key:      key,
			Cause:    err,
		}
	}
	return nil
}
