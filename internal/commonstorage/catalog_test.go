package commonstorage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	genspec "github.com/mark3labs/csdoc/internal/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func build(t *testing.T, opts ...Option) *genspec.Document {
	t.Helper()
	doc, err := Build(context.Background(), opts...)
	require.NoError(t, err)
	return doc
}

func TestBuild_PathsInRegistrationOrder(t *testing.T) {
	t.Parallel()
	doc := build(t)

	routes := make([]string, 0, len(doc.Paths))
	for _, p := range doc.Paths {
		routes = append(routes, p.Route)
	}
	assert.Equal(t, []string{
		"/feed",
		"/user",
		"/user/{name}",
		"/subscription/{topic}",
		"/role/{role}",
		"/content/{topic}",
		"/topic/{topic}",
	}, routes)
	assert.Equal(t, len(endpoints), doc.Endpoints())

	last := doc.Paths[len(doc.Paths)-1]
	assert.Equal(t, []genspec.HttpMethod{genspec.GET, genspec.POST, genspec.DELETE}, last.Methods)
}

func TestBuild_TopicGet(t *testing.T) {
	t.Parallel()
	op := build(t).OpenAPI().Paths["/topic/{topic}"].Get
	require.NotNil(t, op)

	require.Len(t, op.Parameters, 1)
	p := op.Parameters[0].Value
	assert.Equal(t, "topic", p.Name)
	assert.Equal(t, "path", p.In)
	assert.True(t, p.Required)
	assert.Equal(t, "string", p.Schema.Value.Type)

	ok := op.Responses["200"].Value.Content["application/json"]
	require.NotNil(t, ok)
	want := map[string]any{"name": "notes", "description": "notes stored in common-storage", "created": float64(exampleTimestamp)}
	assert.Equal(t, want, ok.Example)
	assert.Equal(t, "integer", ok.Schema.Value.Properties["created"].Value.Type)

	for _, code := range []string{"400", "422", "500"} {
		assert.Contains(t, op.Responses, code)
	}
}

func TestBuild_ContentPostHasOnlySuccess(t *testing.T) {
	t.Parallel()
	op := build(t).OpenAPI().Paths["/content/{topic}"].Post
	require.NotNil(t, op)
	assert.Len(t, op.Responses, 1)
	assert.Contains(t, op.Responses, "200")
}

func TestBuild_ContentGetMediaTypes(t *testing.T) {
	t.Parallel()
	op := build(t).OpenAPI().Paths["/content/{topic}"].Get
	require.NotNil(t, op)
	content := op.Responses["200"].Value.Content
	require.Contains(t, content, "application/json")
	require.Contains(t, content, "application/x-ndjson")
	assert.IsType(t, "", content["application/x-ndjson"].Example)
}

func TestBuild_StandardErrorsIdentical(t *testing.T) {
	t.Parallel()
	api := build(t).OpenAPI()

	encoded := map[string]string{}
	for route, item := range api.Paths {
		for method, op := range item.Operations() {
			for _, code := range []string{"400", "422", "500"} {
				resp, ok := op.Responses[code]
				if !ok {
					continue
				}
				raw, err := json.Marshal(resp)
				require.NoError(t, err)
				if prev, seen := encoded[code]; seen {
					assert.JSONEq(t, prev, string(raw), "%s %s %s", method, route, code)
				} else {
					encoded[code] = string(raw)
				}
			}
		}
	}
	require.Len(t, encoded, 3)
	assert.Contains(t, encoded["400"], "Failed JSON parse")
	assert.Contains(t, encoded["422"], "Invalid request details")
	assert.Contains(t, encoded["500"], "Internal server error")
}

func TestBuild_SecurityAndServer(t *testing.T) {
	t.Parallel()
	api := build(t).OpenAPI()
	require.NotNil(t, api.Components)
	scheme := api.Components.SecuritySchemes[BasicAuth]
	require.NotNil(t, scheme)
	assert.Equal(t, "http", scheme.Value.Type)
	assert.Equal(t, "basic", scheme.Value.Scheme)

	require.Len(t, api.Servers, 1)
	assert.Equal(t, DefaultServerURL, api.Servers[0].URL)
	assert.Equal(t, Title, api.Info.Title)
	assert.Equal(t, DefaultVersion, api.Info.Version)
}

func TestBuild_Options(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zap.DebugLevel)
	doc := build(t,
		WithServerURL(" https://storage.example.org "),
		WithVersion("2.0.0"),
		WithLogger(zap.New(core)),
	)
	assert.Equal(t, "https://storage.example.org", doc.OpenAPI().Servers[0].URL)
	assert.Equal(t, "2.0.0", doc.Info.Version)
	assert.Equal(t, 1, logs.FilterMessage("document assembled").Len())
}

func TestBuild_IndependentRuns(t *testing.T) {
	t.Parallel()
	a := build(t)
	b := build(t)
	assert.NotSame(t, a.OpenAPI(), b.OpenAPI())
	ja, err := json.Marshal(a.OpenAPI())
	require.NoError(t, err)
	jb, err := json.Marshal(b.OpenAPI())
	require.NoError(t, err)
	assert.JSONEq(t, string(ja), string(jb))
}

func TestApiOverviewCoversEveryEndpoint(t *testing.T) {
	t.Parallel()
	overview := apiOverview()
	total := 0
	for _, group := range overview {
		total += len(group.(map[string]any))
	}
	assert.Equal(t, len(endpoints), total)
	assert.Equal(t, "Get user information", overview["users"].(map[string]any)["GET /user/:name"])
}

func TestDefine_Twice(t *testing.T) {
	t.Parallel()
	reg, err := genspec.NewRegistries()
	require.NoError(t, err)
	require.NoError(t, Define(reg))
	err = Define(reg)
	assert.True(t, errors.Is(err, genspec.ErrDuplicateKey))
}

func TestCompose_AllEndpointsAgree(t *testing.T) {
	t.Parallel()
	reg, err := genspec.NewRegistries()
	require.NoError(t, err)
	require.NoError(t, Define(reg))
	defs, err := Compose(reg)
	require.NoError(t, err)
	require.Len(t, defs, len(endpoints))
	for i, def := range defs {
		assert.Equal(t, endpoints[i].route, def.Route)
	}
}
