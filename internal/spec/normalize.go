package spec

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Summary is a flat, deterministic view of a loaded OpenAPI document.
type Summary struct {
	Title           string
	Version         string
	Servers         []Server
	SecuritySchemes []string
	Operations      []OperationSummary
}

// OperationSummary describes one method on one path.
type OperationSummary struct {
	ID         string // "get /topic/{topic}"
	Method     HttpMethod
	Path       string
	Summary    string
	Parameters []string // "in:name", sorted
	Responses  []ResponseSummary
}

type ResponseSummary struct {
	Status      string
	Description string
	MediaTypes  []string
	HasExample  bool
}

// Normalize flattens doc into a Summary. Paths are sorted; methods follow the
// canonical order used when writing documents.
func Normalize(ctx context.Context, doc *openapi3.T) (*Summary, error) {
	_ = ctx
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}

	sm := &Summary{}
	if doc.Info != nil {
		sm.Title = safeStr(doc.Info.Title)
		sm.Version = safeStr(doc.Info.Version)
	}
	for _, s := range doc.Servers {
		if s == nil {
			continue
		}
		sm.Servers = append(sm.Servers, Server{URL: safeStr(s.URL), Description: safeStr(s.Description)})
	}
	if doc.Components != nil {
		for name := range doc.Components.SecuritySchemes {
			sm.SecuritySchemes = append(sm.SecuritySchemes, name)
		}
		sort.Strings(sm.SecuritySchemes)
	}

	pathKeys := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		pathKeys = append(pathKeys, p)
	}
	sort.Strings(pathKeys)

	for _, p := range pathKeys {
		item := doc.Paths[p]
		if item == nil {
			continue
		}
		// Path-level parameters first, overridden by operation-level ones.
		base := make(map[string]struct{})
		for _, pref := range item.Parameters {
			if pref != nil && pref.Value != nil {
				base[paramKey(pref.Value.In, pref.Value.Name)] = struct{}{}
			}
		}
		for _, m := range methodOrder {
			op := item.GetOperation(strings.ToUpper(string(m)))
			if op == nil {
				continue
			}
			merged := make(map[string]struct{}, len(base))
			for k := range base {
				merged[k] = struct{}{}
			}
			for _, pref := range op.Parameters {
				if pref != nil && pref.Value != nil {
					merged[paramKey(pref.Value.In, pref.Value.Name)] = struct{}{}
				}
			}
			params := make([]string, 0, len(merged))
			for k := range merged {
				params = append(params, k)
			}
			sort.Strings(params)

			sm.Operations = append(sm.Operations, OperationSummary{
				ID:         string(m) + " " + p,
				Method:     m,
				Path:       p,
				Summary:    safeStr(op.Summary),
				Parameters: params,
				Responses:  toResponseSummaries(op.Responses),
			})
		}
	}
	return sm, nil
}

// Operation returns the summary for method on path, if present.
func (s *Summary) Operation(method HttpMethod, path string) (OperationSummary, bool) {
	for _, op := range s.Operations {
		if op.Method == method && op.Path == path {
			return op, true
		}
	}
	return OperationSummary{}, false
}

func toResponseSummaries(responses openapi3.Responses) []ResponseSummary {
	if len(responses) == 0 {
		return nil
	}
	// In kin-openapi v0.116, Responses is a map[string]*ResponseRef
	codes := make([]string, 0, len(responses))
	for code := range responses {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	out := make([]ResponseSummary, 0, len(codes))
	for _, code := range codes {
		rref := responses[code]
		if rref == nil || rref.Value == nil {
			continue
		}
		rs := ResponseSummary{Status: code}
		if rref.Value.Description != nil {
			rs.Description = *rref.Value.Description
		}
		for mime, mt := range rref.Value.Content {
			rs.MediaTypes = append(rs.MediaTypes, mime)
			if mt != nil && (mt.Example != nil || len(mt.Examples) > 0) {
				rs.HasExample = true
			}
		}
		sort.Strings(rs.MediaTypes)
		out = append(out, rs)
	}
	return out
}

func safeStr(s string) string { return strings.TrimSpace(s) }
