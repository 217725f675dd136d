// Package commonstorage describes the Common Storage HTTP API: a
// backend-agnostic federated personal data store. Build assembles its
// OpenAPI document from the shared definitions in this package.
package commonstorage

import (
	"context"
	"fmt"
	"sort"
	"strings"

	genspec "github.com/mark3labs/csdoc/internal/spec"
	"go.uber.org/zap"
)

const (
	DefaultServerURL = "https://common-storage.rgrannell.xyz"
	DefaultVersion   = "1.0.0"
	Title            = "Common Storage"
	BasicAuth        = "BasicAuth"
)

var description = strings.Join([]string{
	"Common Storage is a backend-agnostic federated personal data-store. It is protected by RBAC, and allows arbitrary (or constrained) events to be written to the server. Content can be synced between servers by setting up a subscription to a topic. It can serve as a relay between websites that publish notes, bookmarks, and other data and a locally hosted data-store.",
	"",
	"Common-storage data is accessible using basic-authenticated HTTP requests, with support for more rapid retrieval of content from a topic using streaming JSON.",
}, "\n")

type endpoint struct {
	group       string // apiOverview section
	route       string
	method      genspec.HttpMethod
	summary     string
	description string
	params      []string
	success     genspec.SuccessResponse
	noErrors    bool // content append reports only 200
}

var rolePostDescription = strings.Join([]string{
	"Post a role that defined the permissions that a particular role has. Permissions are defined at two levels; route level and topic level. Available route-level permissions are:",
	"- ALL",
	"- GET /content",
	"- POST /content",
	"- GET /topic",
	"- POST /topic",
	"- DELETE /topic",
	"",
	"These permissions apply to topics, with the possible values:",
	"- ALL",
	"- USER_CREATED",
	"- An array of topic names",
}, "\n")

// endpoints in registration order; paths appear in the document in this order.
var endpoints = []endpoint{
	{
		group: "feed", route: "/feed", method: genspec.GET,
		summary:     "Retrieve general information about this server",
		description: "/feed publically describes the topics available on a particular server, as well as statistics about how recently topics have been updated. It also lists subscriptions the server currently holds",
		params:      []string{"human"},
		success:     genspec.JSON("Feed retrieved successfully", "feedGet"),
	},
	{
		group: "users", route: "/user", method: genspec.GET,
		summary:     "Get information about registered users",
		description: "List information about all registered users on this server",
		params:      []string{"human"},
		success:     genspec.JSON("Get information about all-users registered on this server", "usersGet"),
	},
	{
		group: "users", route: "/user/{name}", method: genspec.GET,
		summary:     "Get user information",
		description: "Get information about a particular user, by name",
		params:      []string{"user", "human"},
		success:     genspec.JSON("", "userGet"),
	},
	{
		group: "users", route: "/user/{name}", method: genspec.POST,
		summary:     "Add a user",
		description: "Register a user associated with a particular role to the server",
		params:      []string{"user"},
		success:     genspec.JSON("User successfully added", "userPost"),
	},
	{
		group: "subscriptions", route: "/subscription/{topic}", method: genspec.GET,
		summary:     "Get details about a subscription",
		description: "Common-storage servers can retrieve information from other server's topic via a subscription",
		params:      []string{"topic", "human"},
		success:     genspec.JSON("", "subscriptionGet"),
	},
	{
		group: "subscriptions", route: "/subscription/{topic}", method: genspec.POST,
		summary:     "Subscribe to a common-storage topic",
		description: "Subscribe to a remote server",
		params:      []string{"topic"},
		success:     genspec.JSON("", "subscriptionPost"),
	},
	{
		group: "role", route: "/role/{role}", method: genspec.GET,
		summary:     "Get details about a role",
		description: "Roles describe what a user can and cannot do when interacting with a common-storage server",
		params:      []string{"role", "human"},
		success:     genspec.JSON("", "roleGet"),
	},
	{
		group: "role", route: "/role/{role}", method: genspec.POST,
		summary:     "Create a new permissions role",
		description: rolePostDescription,
		params:      []string{"role"},
		success:     genspec.JSON("", "rolePost"),
	},
	{
		group: "content", route: "/content/{topic}", method: genspec.GET,
		summary:     "Retrieve a collection of content from a topic",
		description: "Content can be retrieved using paginated GET requests, or as streaming JSON",
		params:      []string{"topic"},
		success: genspec.SuccessResponse{Content: []genspec.MediaRef{
			{MediaType: genspec.MediaTypeJSON, Key: "contentGetJson"},
			{MediaType: "application/x-ndjson", Key: "contentGetJsonNd"},
		}},
	},
	{
		group: "content", route: "/content/{topic}", method: genspec.POST,
		summary:     "Add content to a topic",
		description: "Add a list of content to a particular topic. Optionally, use a batch id to avoid partial writes. Batches are closed by posting an empty list to that ID. Content must be valid according the the schema associated with the topic, if one exists.",
		params:      []string{"topic"},
		success:     genspec.JSON("", "contentPost"),
		noErrors:    true,
	},
	{
		group: "topic", route: "/topic/{topic}", method: genspec.GET,
		summary:     "Get metadata about a topic",
		description: "Topics are logical grouping of content, like notes, bookmarks, events",
		params:      []string{"topic"},
		success:     genspec.JSON("", "topicGet"),
	},
	{
		group: "topic", route: "/topic/{topic}", method: genspec.POST,
		summary:     "Add a topic to the server",
		description: "Add a topic if not all ready present. Topics may have a schema constraining content that is added to this topic.",
		params:      []string{"topic"},
		success:     genspec.JSON("", "topicPost"),
	},
	{
		group: "topic", route: "/topic/{topic}", method: genspec.DELETE,
		summary:     "Delete a topic from the server",
		description: "Deletes a topic. As of this version, it does not delete the content associated with that topic, but it does make it inaccessible by the API",
		params:      []string{"topic"},
		success:     genspec.JSON("", "topicDelete"),
	},
}

// overviewKey renders a route the way the server documents it, e.g. "GET /user/:name".
func overviewKey(ep endpoint) string {
	route := ep.route
	route = strings.NewReplacer("{", ":", "}", "").Replace(route)
	return strings.ToUpper(string(ep.method)) + " " + route
}

// Option customises Build.
type Option func(*buildConfig)

type buildConfig struct {
	serverURL string
	version   string
	logger    *zap.Logger
}

func WithServerURL(u string) Option { return func(c *buildConfig) { c.serverURL = strings.TrimSpace(u) } }
func WithVersion(v string) Option   { return func(c *buildConfig) { c.version = strings.TrimSpace(v) } }
func WithLogger(l *zap.Logger) Option {
	return func(c *buildConfig) { c.logger = l }
}

// Define registers every parameter, schema and example on reg.
func Define(reg *genspec.Registries) error {
	for _, p := range parameters {
		if err := reg.Parameters.Define(p.key, p.def); err != nil {
			return err
		}
	}
	sc := schemas()
	for _, key := range sortedKeys(sc) {
		if err := reg.Schemas.Define(key, sc[key]); err != nil {
			return err
		}
	}
	ex := examples()
	for _, key := range sortedKeys(ex) {
		if err := reg.Examples.Define(key, &genspec.ExampleDef{Value: ex[key]}); err != nil {
			return err
		}
	}
	return nil
}

// Compose builds every endpoint definition in registration order.
func Compose(reg *genspec.Registries) ([]*genspec.EndpointDef, error) {
	c := genspec.NewComposer(reg)
	out := make([]*genspec.EndpointDef, 0, len(endpoints))
	for _, ep := range endpoints {
		def, err := c.Compose(ep.route, ep.method, ep.summary, ep.description, ep.params, ep.success, !ep.noErrors)
		if err != nil {
			return nil, fmt.Errorf("compose %s %s: %w", ep.method, ep.route, err)
		}
		out = append(out, def)
	}
	return out, nil
}

// Build runs one full generation on a fresh set of registries.
func Build(ctx context.Context, opts ...Option) (*genspec.Document, error) {
	cfg := &buildConfig{serverURL: DefaultServerURL, version: DefaultVersion}
	for _, opt := range opts {
		opt(cfg)
	}
	log := cfg.logger
	if log == nil {
		log = zap.NewNop()
	}

	reg, err := genspec.NewRegistries()
	if err != nil {
		return nil, err
	}
	if err := Define(reg); err != nil {
		return nil, err
	}
	log.Debug("registries defined",
		zap.Int("parameters", reg.Parameters.Len()),
		zap.Int("schemas", reg.Schemas.Len()),
		zap.Int("examples", reg.Examples.Len()),
	)

	defs, err := Compose(reg)
	if err != nil {
		return nil, err
	}
	log.Debug("endpoints composed", zap.Int("count", len(defs)))

	doc, err := genspec.NewAssembler(reg).Assemble(ctx,
		genspec.Info{Title: Title, Description: description, Version: cfg.version},
		[]genspec.SecurityScheme{{Name: BasicAuth, Type: "http", Scheme: "basic"}},
		[]string{BasicAuth},
		[]genspec.Server{{URL: cfg.serverURL}},
		defs,
	)
	if err != nil {
		return nil, err
	}
	log.Debug("document assembled", zap.Int("paths", len(doc.Paths)), zap.Int("operations", doc.Endpoints()))
	return doc, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
