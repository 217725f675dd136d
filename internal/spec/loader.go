package spec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// Load reads an emitted OpenAPI v3 document (JSON or YAML) from disk and
// validates it. External refs are not followed; assembled documents inline
// every schema.
func Load(ctx context.Context, input string) (*openapi3.T, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &SpecError{Code: InputError, Message: "spec: input is empty"}
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, err), Location: abs, Cause: err}
	}
	return LoadData(ctx, raw, abs)
}

// LoadData is Load for bytes already in memory. location is only used in errors.
func LoadData(ctx context.Context, raw []byte, location string) (*openapi3.T, error) {
	if err := detectSpecVersion(raw); err != nil {
		return nil, &SpecError{Code: ParseError, Message: err.Error(), Location: location, Cause: err}
	}
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = false
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, mapValidateOrParseErr(err, location)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, mapValidateOrParseErr(err, location)
	}
	return doc, nil
}

// detectSpecVersion accepts only OpenAPI 3.x documents.
func detectSpecVersion(data []byte) error {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("parse spec: %w", err)
	}
	if v, ok := root["openapi"]; ok {
		if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "3.") {
			return nil
		}
	}
	return errors.New("spec: missing or unknown version (expected 'openapi: 3.x')")
}

func mapValidateOrParseErr(err error, location string) error {
	code := Validation
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "parse") || strings.Contains(lower, "invalid character") || strings.Contains(lower, "unmarshal") {
		code = ParseError
	}
	msg := err.Error()
	if ptr := extractJSONPointer(err); ptr != "" {
		msg = fmt.Sprintf("%s (at %s)", msg, ptr)
	}
	return &SpecError{Code: code, Message: msg, Location: location, Cause: err}
}

var jsonPtrRe = regexp.MustCompile(`#/[^\s'"]+`)

func extractJSONPointer(err error) string {
	if err == nil {
		return ""
	}
	if me, ok := err.(openapi3.MultiError); ok {
		if len(me) > 0 {
			return extractJSONPointer(me[0])
		}
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		if parts := se.JSONPointer(); len(parts) > 0 {
			return "#/" + strings.Join(parts, "/")
		}
	}
	return jsonPtrRe.FindString(err.Error())
}
