package commonstorage

import (
	genspec "github.com/mark3labs/csdoc/internal/spec"
)

// created timestamps in examples are epoch milliseconds.
const exampleTimestamp int64 = 1600000000000

type parameterEntry struct {
	key string
	def *genspec.ParameterDef
}

var parameters = []parameterEntry{
	{"user", &genspec.ParameterDef{Name: "name", In: "path", Description: "The user-name", Required: true, Type: genspec.TypeString}},
	{"topic", &genspec.ParameterDef{Name: "topic", In: "path", Description: "The topic-name", Required: true, Type: genspec.TypeString}},
	{"role", &genspec.ParameterDef{Name: "role", In: "path", Description: "The role-name", Required: true, Type: genspec.TypeString}},
	{"human", &genspec.ParameterDef{Name: "human", In: "query", Description: "Should dates be presented in human readable formats?", Type: genspec.TypeBoolean}},
}

func str() *genspec.SchemaDef     { return &genspec.SchemaDef{Type: genspec.TypeString} }
func integer() *genspec.SchemaDef { return &genspec.SchemaDef{Type: genspec.TypeInteger} }
func number() *genspec.SchemaDef  { return &genspec.SchemaDef{Type: genspec.TypeNumber} }
func boolean() *genspec.SchemaDef { return &genspec.SchemaDef{Type: genspec.TypeBoolean} }

func object(props map[string]*genspec.SchemaDef) *genspec.SchemaDef {
	return &genspec.SchemaDef{Type: genspec.TypeObject, Properties: props}
}

func arrayOf(items *genspec.SchemaDef) *genspec.SchemaDef {
	return &genspec.SchemaDef{Type: genspec.TypeArray, Items: items}
}

func anyOf(alts ...*genspec.SchemaDef) *genspec.SchemaDef {
	return &genspec.SchemaDef{AnyOf: alts}
}

func existed() *genspec.SchemaDef {
	return object(map[string]*genspec.SchemaDef{"existed": boolean()})
}

func user() *genspec.SchemaDef {
	return object(map[string]*genspec.SchemaDef{
		"name":    str(),
		"role":    str(),
		"created": integer(),
	})
}

// Topic and route permissions are either a keyword (ALL, USER_CREATED) or a list.
func permission() *genspec.SchemaDef {
	return object(map[string]*genspec.SchemaDef{
		"topics": anyOf(str(), arrayOf(str())),
		"routes": anyOf(str(), arrayOf(str())),
	})
}

func schemas() map[string]*genspec.SchemaDef {
	return map[string]*genspec.SchemaDef{
		"usersGet": arrayOf(user()),
		"userGet":  user(),
		"userPost": existed(),
		"feedGet": object(map[string]*genspec.SchemaDef{
			"description": str(),
			"title":       str(),
			"version":     str(),
			"topics": arrayOf(object(map[string]*genspec.SchemaDef{
				"topic":       str(),
				"description": str(),
				"stats": object(map[string]*genspec.SchemaDef{
					"count":       integer(),
					"lastUpdated": integer(),
				}),
			})),
			"subscriptions": {Type: genspec.TypeObject},
			"apiOverview":   {Type: genspec.TypeObject, Description: "Route summaries grouped by resource"},
		}),
		"subscriptionGet":  {Type: genspec.TypeObject},
		"subscriptionPost": {Type: genspec.TypeObject},
		"roleGet": object(map[string]*genspec.SchemaDef{
			"name":        str(),
			"created":     integer(),
			"permissions": arrayOf(permission()),
		}),
		"rolePost":       existed(),
		"contentGetJson": arrayOf(anyOf(str(), integer(), &genspec.SchemaDef{Type: genspec.TypeObject})),
		"contentGetJsonNd": {
			Type:        genspec.TypeString,
			Description: "Newline-delimited JSON, one content item per line",
		},
		"contentPost": object(map[string]*genspec.SchemaDef{
			"batch": object(map[string]*genspec.SchemaDef{
				"id":     str(),
				"status": {Type: genspec.TypeString, Enum: []any{"open", "closed"}},
			}),
			"topic": str(),
			"stats": object(map[string]*genspec.SchemaDef{
				"count":       number(),
				"lastUpdated": number(),
			}),
		}),
		"topicGet": object(map[string]*genspec.SchemaDef{
			"name":        str(),
			"description": str(),
			"created":     integer(),
		}),
		"topicPost":   existed(),
		"topicDelete": existed(),
	}
}

func examples() map[string]any {
	return map[string]any{
		"usersGet": []any{
			map[string]any{"name": "notes_read", "role": "notes_read_role", "created": exampleTimestamp},
		},
		"userGet": map[string]any{"name": "notes_read", "role": "notes_read_role", "created": exampleTimestamp},
		"feedGet": map[string]any{
			"description": "My personal common-storage server",
			"title":       "Common Storage",
			"version":     "v0.1",
			"topics": []any{
				map[string]any{
					"topic":       "snippets",
					"description": "Short unstructured text-notes for sharing links, quotes, reminders, etc.",
					"stats":       map[string]any{"count": 1, "lastUpdated": exampleTimestamp},
				},
			},
			"subscriptions": map[string]any{},
			"apiOverview":   apiOverview(),
		},
		"userPost":         map[string]any{"existed": false},
		"subscriptionPost": map[string]any{},
		"subscriptionGet":  map[string]any{},
		"roleGet": map[string]any{
			"name":    "notes_admin_role",
			"created": exampleTimestamp,
			"permissions": []any{
				map[string]any{"topics": []any{"notes"}, "routes": "ALL"},
			},
		},
		"rolePost": map[string]any{"existed": false},
		"contentPost": map[string]any{
			"batch": map[string]any{"id": "test-batch", "status": "open"},
			"topic": "notes",
			"stats": map[string]any{},
		},
		"contentGetJson": []any{
			map[string]any{"id": "my-note-0", "text": "an arbitrary note"},
			map[string]any{"id": "my-note-1", "text": "another arbitrary note"},
		},
		"contentGetJsonNd": "{\"id\": \"my-note-0\", \"text\": \"an arbitrary note\"}\n" +
			"{\"id\": \"my-note-1\", \"text\": \"another arbitrary note\"}\n",
		"topicGet":    map[string]any{"name": "notes", "description": "notes stored in common-storage", "created": exampleTimestamp},
		"topicPost":   map[string]any{"existed": false},
		"topicDelete": map[string]any{"existed": true},
	}
}

// apiOverview lists the summary of every endpoint, grouped by resource.
func apiOverview() map[string]any {
	out := map[string]any{}
	for _, ep := range endpoints {
		group, ok := out[ep.group].(map[string]any)
		if !ok {
			group = map[string]any{}
			out[ep.group] = group
		}
		group[overviewKey(ep)] = ep.summary
	}
	return out
}
