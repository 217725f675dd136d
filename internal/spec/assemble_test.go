package spec

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routeMethod struct {
	route  string
	method HttpMethod
}

var (
	testInfo    = Info{Title: "Test API", Description: "demo", Version: "1.0.0"}
	testServers = []Server{{URL: "https://example.com"}}
	testSchemes = []SecurityScheme{{Name: "BasicAuth", Type: "http", Scheme: "basic"}}
)

func composeAll(t *testing.T, reg *Registries, specs ...routeMethod) []*EndpointDef {
	t.Helper()
	c := NewComposer(reg)
	out := make([]*EndpointDef, 0, len(specs))
	for _, s := range specs {
		ep, err := c.Compose(s.route, s.method, "summary", "", []string{"topic"}, JSON("ok", "topicGet"), true)
		require.NoError(t, err)
		out = append(out, ep)
	}
	return out
}

func TestAssemble_GroupsMethodsUnderPath(t *testing.T) {
	t.Parallel()
	reg := newTestRegistries(t)
	eps := composeAll(t, reg,
		routeMethod{"/topic/{topic}", DELETE},
		routeMethod{"/content/{topic}", GET},
		routeMethod{"/topic/{topic}", GET},
		routeMethod{"/topic/{topic}", POST},
	)

	doc, err := NewAssembler(reg).Assemble(context.Background(), testInfo, testSchemes, []string{"BasicAuth"}, testServers, eps)
	require.NoError(t, err)

	require.Len(t, doc.Paths, 2)
	assert.Equal(t, "/topic/{topic}", doc.Paths[0].Route)
	assert.Equal(t, []HttpMethod{GET, POST, DELETE}, doc.Paths[0].Methods)
	assert.Equal(t, "/content/{topic}", doc.Paths[1].Route)
	assert.Equal(t, 4, doc.Endpoints())

	api := doc.OpenAPI()
	require.NotNil(t, api)
	assert.Equal(t, OpenAPIVersion, api.OpenAPI)
	item := api.Paths["/topic/{topic}"]
	require.NotNil(t, item)
	assert.NotNil(t, item.Get)
	assert.NotNil(t, item.Post)
	assert.NotNil(t, item.Delete)
	assert.Nil(t, item.Put)

	require.Len(t, api.Security, 1)
	assert.Contains(t, api.Security[0], "BasicAuth")
	require.NotNil(t, api.Components)
	assert.Equal(t, "basic", api.Components.SecuritySchemes["BasicAuth"].Value.Scheme)
}

func TestAssemble_ResolvedResponses(t *testing.T) {
	t.Parallel()
	reg := newTestRegistries(t)
	eps := composeAll(t, reg, routeMethod{"/topic/{topic}", GET})

	doc, err := NewAssembler(reg).Assemble(context.Background(), testInfo, testSchemes, []string{"BasicAuth"}, testServers, eps)
	require.NoError(t, err)

	op := doc.OpenAPI().Paths["/topic/{topic}"].Get
	require.NotNil(t, op)
	require.Len(t, op.Parameters, 1)
	assert.Equal(t, "topic", op.Parameters[0].Value.Name)
	assert.True(t, op.Parameters[0].Value.Required)

	ok := op.Responses["200"].Value.Content["application/json"]
	require.NotNil(t, ok)
	assert.Equal(t, map[string]any{"name": "notes", "created": float64(1600000000000)}, ok.Example)
	assert.Equal(t, TypeObject, ok.Schema.Value.Type)

	for code, desc := range map[string]string{"400": "Failed JSON parse", "422": "Invalid request details", "500": "Internal server error"} {
		resp := op.Responses[code]
		require.NotNil(t, resp, code)
		assert.Equal(t, desc, *resp.Value.Description)
		assert.Equal(t, map[string]any{"error": "Error message"}, resp.Value.Content["application/json"].Example)
	}
}

func TestAssemble_DuplicateEndpoint(t *testing.T) {
	t.Parallel()
	reg := newTestRegistries(t)
	eps := composeAll(t, reg,
		routeMethod{"/topic/{topic}", GET},
		routeMethod{"/topic/{topic}", GET},
	)
	_, err := NewAssembler(reg).Assemble(context.Background(), testInfo, testSchemes, []string{"BasicAuth"}, testServers, eps)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateKey))
}

func TestAssemble_DanglingReferences(t *testing.T) {
	t.Parallel()
	reg := newTestRegistries(t)
	bad := &EndpointDef{
		Route:      "/topic/{topic}",
		Method:     GET,
		Parameters: []string{"topic", "ghost"},
		Responses: map[string]*ResponseTemplate{
			"200": {Status: "200", Content: []MediaRef{{MediaType: MediaTypeJSON, Key: "vanished"}}},
		},
	}
	doc, err := NewAssembler(reg).Assemble(context.Background(), testInfo, testSchemes, []string{"BasicAuth"}, testServers, []*EndpointDef{bad})
	require.Error(t, err)
	assert.Nil(t, doc)
	assert.True(t, errors.Is(err, ErrIntegrity))
	assert.Contains(t, err.Error(), "parameters/ghost")
	assert.Contains(t, err.Error(), "schemas/vanished")
	assert.Contains(t, err.Error(), "examples/vanished")
}

func TestAssemble_UnknownSecurityScheme(t *testing.T) {
	t.Parallel()
	reg := newTestRegistries(t)
	eps := composeAll(t, reg, routeMethod{"/topic/{topic}", GET})
	_, err := NewAssembler(reg).Assemble(context.Background(), testInfo, testSchemes, []string{"BearerAuth"}, testServers, eps)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIntegrity))
	assert.Contains(t, err.Error(), "securitySchemes/BearerAuth")
}

func TestAssemble_UnrepresentableExample(t *testing.T) {
	t.Parallel()
	reg := newTestRegistries(t)
	reg.Schemas.MustDefine("chan", &SchemaDef{Type: TypeObject})
	reg.Examples.MustDefine("chan", &ExampleDef{Value: make(chan int)})
	ep := &EndpointDef{
		Route:     "/stream",
		Method:    GET,
		Responses: map[string]*ResponseTemplate{"200": {Status: "200", Content: []MediaRef{{MediaType: MediaTypeJSON, Key: "chan"}}}},
	}
	_, err := NewAssembler(reg).Assemble(context.Background(), testInfo, nil, nil, testServers, []*EndpointDef{ep})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSerialization))
}

func TestAssemble_RequiresInfoServersAndEndpoints(t *testing.T) {
	t.Parallel()
	reg := newTestRegistries(t)
	eps := composeAll(t, reg, routeMethod{"/topic/{topic}", GET})
	a := NewAssembler(reg)
	ctx := context.Background()

	_, err := a.Assemble(ctx, Info{Title: "x"}, nil, nil, testServers, eps)
	assert.True(t, errors.Is(err, ErrInvalidDefinition))

	_, err = a.Assemble(ctx, testInfo, nil, nil, nil, eps)
	assert.True(t, errors.Is(err, ErrInvalidDefinition))

	_, err = a.Assemble(ctx, testInfo, nil, nil, testServers, nil)
	assert.True(t, errors.Is(err, ErrInvalidDefinition))
}

func TestAssemble_DuplicateSecurityScheme(t *testing.T) {
	t.Parallel()
	reg := newTestRegistries(t)
	eps := composeAll(t, reg, routeMethod{"/topic/{topic}", GET})
	schemes := append(append([]SecurityScheme(nil), testSchemes...), testSchemes...)
	_, err := NewAssembler(reg).Assemble(context.Background(), testInfo, schemes, nil, testServers, eps)
	assert.True(t, errors.Is(err, ErrDuplicateKey))
}

func TestAssemble_IntegerEnumValidates(t *testing.T) {
	t.Parallel()
	reg := newTestRegistries(t)
	reg.Schemas.MustDefine("level", &SchemaDef{Type: TypeObject, Properties: map[string]*SchemaDef{
		"n": {Type: TypeInteger, Enum: []any{1, 2}},
	}})
	reg.Examples.MustDefine("level", &ExampleDef{Value: map[string]any{"n": 2}})
	ep, err := NewComposer(reg).Compose("/level", GET, "", "", nil, JSON("ok", "level"), true)
	require.NoError(t, err)

	doc, err := NewAssembler(reg).Assemble(context.Background(), testInfo, testSchemes, []string{"BasicAuth"}, testServers, []*EndpointDef{ep})
	require.NoError(t, err)

	schema := doc.OpenAPI().Paths["/level"].Get.Responses["200"].Value.Content["application/json"].Schema.Value
	assert.Equal(t, []any{float64(1), float64(2)}, schema.Properties["n"].Value.Enum)
}
