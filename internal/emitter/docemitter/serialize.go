package docemitter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	genspec "github.com/mark3labs/csdoc/internal/spec"
	"gopkg.in/yaml.v3"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("docemitter: unsupported format %q (allowed: json, yaml)", s)
	}
}

// Serialize renders the document. The whole text is produced in memory, so a
// failure never leaves partial output behind.
func Serialize(doc *genspec.Document, format Format) ([]byte, error) {
	if doc == nil || doc.OpenAPI() == nil {
		return nil, serializationErr("document has not been assembled", nil)
	}
	root, err := buildTree(doc)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatJSON:
		return renderJSON(root)
	case FormatYAML:
		return renderYAML(root)
	default:
		return nil, fmt.Errorf("docemitter: unsupported format %q (allowed: json, yaml)", format)
	}
}

// buildTree lays out the document in a fixed key order: openapi, info,
// components, security, servers, paths. Paths follow registration order and
// methods follow the canonical order kept on the Document.
func buildTree(doc *genspec.Document) (*yaml.Node, error) {
	api := doc.OpenAPI()
	root := mappingNode()

	appendPair(root, "openapi", stringNode(api.OpenAPI))

	info, err := encodeNode(api.Info)
	if err != nil {
		return nil, err
	}
	appendPair(root, "info", info)

	if api.Components != nil && len(api.Components.SecuritySchemes) > 0 {
		components, err := encodeNode(api.Components)
		if err != nil {
			return nil, err
		}
		appendPair(root, "components", components)
	}
	if len(api.Security) > 0 {
		security, err := encodeNode(api.Security)
		if err != nil {
			return nil, err
		}
		appendPair(root, "security", security)
	}
	if len(api.Servers) > 0 {
		servers, err := encodeNode(api.Servers)
		if err != nil {
			return nil, err
		}
		appendPair(root, "servers", servers)
	}

	paths := mappingNode()
	for _, entry := range doc.Paths {
		item := api.Paths[entry.Route]
		if item == nil {
			return nil, serializationErr(fmt.Sprintf("path %s missing from resolved tree", entry.Route), nil)
		}
		methods := mappingNode()
		for _, m := range entry.Methods {
			op := item.GetOperation(strings.ToUpper(string(m)))
			if op == nil {
				return nil, serializationErr(fmt.Sprintf("operation %s %s missing from resolved tree", m, entry.Route), nil)
			}
			n, err := encodeNode(op)
			if err != nil {
				return nil, err
			}
			appendPair(methods, string(m), n)
		}
		appendPair(paths, entry.Route, methods)
	}
	appendPair(root, "paths", paths)
	return root, nil
}

// encodeNode marshals v with its JSON encoding (kin-openapi types carry their
// own MarshalJSON) and decodes the result into a yaml.Node. JSON scalars map
// onto !!int, !!float, !!bool, !!null and !!str tags, so types survive.
func encodeNode(v any) (*yaml.Node, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, serializationErr(fmt.Sprintf("marshal %T", v), err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, serializationErr(fmt.Sprintf("decode %T", v), err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return nil, serializationErr(fmt.Sprintf("unexpected node for %T", v), nil)
	}
	n := doc.Content[0]
	resetStyle(n)
	return n, nil
}

// resetStyle drops the flow and quoting styles inherited from JSON input so
// the YAML encoder picks block style.
func resetStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		resetStyle(c)
	}
}

func mappingNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func stringNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func appendPair(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, stringNode(key), value)
}

func renderYAML(root *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, serializationErr("encode yaml", err)
	}
	if err := enc.Close(); err != nil {
		return nil, serializationErr("encode yaml", err)
	}
	return buf.Bytes(), nil
}

func renderJSON(root *yaml.Node) ([]byte, error) {
	var compact bytes.Buffer
	if err := writeJSON(&compact, root); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, serializationErr("indent json", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// writeJSON writes the node tree as compact JSON, keeping mapping order.
func writeJSON(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) != 1 {
			return serializationErr("empty document node", nil)
		}
		return writeJSON(buf, n.Content[0])
	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(n.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(n.Content[i].Value)
			if err != nil {
				return serializationErr("marshal key", err)
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeJSON(buf, n.Content[i+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, c := range n.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, c); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case yaml.ScalarNode:
		return writeScalar(buf, n)
	case yaml.AliasNode:
		return serializationErr("aliases are not representable in JSON", nil)
	default:
		return serializationErr(fmt.Sprintf("unknown node kind %d", n.Kind), nil)
	}
	return nil
}

func writeScalar(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.ShortTag() {
	case "!!null":
		buf.WriteString("null")
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return serializationErr("decode bool", err)
		}
		if b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case "!!int", "!!float":
		if !json.Valid([]byte(n.Value)) {
			return serializationErr(fmt.Sprintf("number %q is not representable in JSON", n.Value), nil)
		}
		buf.WriteString(n.Value)
	default:
		s, err := json.Marshal(n.Value)
		if err != nil {
			return serializationErr("marshal string", err)
		}
		buf.Write(s)
	}
	return nil
}

func serializationErr(msg string, cause error) error {
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return &genspec.SpecError{Code: genspec.Serialization, Message: "serialize: " + msg, Cause: cause}
}
