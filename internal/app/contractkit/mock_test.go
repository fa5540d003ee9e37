package contractkit

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const apiKeyResponses = `"response": C{
		"200": C{"description": "keys", "schema": S},
		"404": C{"description": "none", "schema": S},
	},`

func realisticMockConfig() MockConfig {
	return DefaultConfig().Mock
}

func TestGenerateMockApiKeyList(t *testing.T) {
	r := require.New(t)
	source := contractSource(`"path": "/api-keys", "method": "get", ` + apiKeyResponses)
	ext := extractSource(t, "api-key-get.go", source)

	result := GenerateMock(ext, 200, realisticMockConfig())

	r.True(result.Success)
	r.Equal("api-key-list", result.Type)

	records, ok := result.Data.([]interface{})
	r.True(ok)
	r.NotEmpty(records)

	for _, item := range records {
		record, ok := item.(map[string]interface{})
		r.True(ok)
		assert.NotEmpty(t, record["id"])
		assert.NotEmpty(t, record["status"])
		assert.NotContains(t, record, "key")

		permissions, ok := record["permissions"].([]interface{})
		r.True(ok)
		r.NotEmpty(permissions)
		for _, p := range permissions {
			_, isString := p.(string)
			assert.True(t, isString)
		}

		createdAt, ok := record["createdAt"].(string)
		r.True(ok)
		_, err := time.Parse(time.RFC3339, createdAt)
		assert.NoError(t, err)
	}
}

func TestGenerateMockApiKeyCreated(t *testing.T) {
	r := require.New(t)
	source := contractSource(`"path": "/api-keys", "method": "post", ` + apiKeyResponses)
	ext := extractSource(t, "api-key-post.go", source)

	result := GenerateMock(ext, 201, realisticMockConfig())

	r.True(result.Success)
	r.Equal("api-key-record", result.Type)

	record, ok := result.Data.(map[string]interface{})
	r.True(ok)
	assert.NotEmpty(t, record["id"])
	assert.NotEmpty(t, record["key"])
	assert.NotEmpty(t, record["keyHash"])
}

func TestGenerateMockGenericFallback(t *testing.T) {
	r := require.New(t)
	result := GenerateMock(extractSource(t, "user-get.go", userGetContract), 200, realisticMockConfig())

	r.True(result.Success)
	r.Equal("generic", result.Type)

	record, ok := result.Data.(map[string]interface{})
	r.True(ok)
	assert.NotEmpty(t, record["id"])
	assert.NotEmpty(t, record["timestamp"])
	assert.Equal(t, true, record["success"])
	assert.NotEmpty(t, record["message"])
}

func TestGenerateMockStatusCodeFallback(t *testing.T) {
	source := contractSource(`"path": "/things", "method": "post",
	"response": C{
		"201": C{"description": "created", "schema": S},
		"400": C{"description": "bad", "schema": S},
	},`)
	ext := extractSource(t, "thing-post.go", source)

	result := GenerateMock(ext, 500, realisticMockConfig())

	require.True(t, result.Success)
	record := result.Data.(map[string]interface{})
	// First declared status code wins when the requested one is undeclared.
	assert.Contains(t, record["message"], "201")
}

func TestGenerateMockCustomGenerators(t *testing.T) {
	cfg := realisticMockConfig()
	cfg.CustomGenerators = map[string]FieldGenerator{
		"id": func(r *rand.Rand) interface{} { return "fixed-id" },
	}

	result := GenerateMock(extractSource(t, "user-get.go", userGetContract), 200, cfg)

	require.True(t, result.Success)
	record := result.Data.(map[string]interface{})
	assert.Equal(t, "fixed-id", record["id"])
}

func TestGenerateMockPlaceholderData(t *testing.T) {
	cfg := realisticMockConfig()
	cfg.GenerateRealisticData = false

	source := contractSource(`"path": "/api-keys", "method": "get", ` + apiKeyResponses)
	result := GenerateMock(extractSource(t, "api-key-get.go", source), 200, cfg)

	require.True(t, result.Success)
	records := result.Data.([]interface{})
	require.Len(t, records, 1)
	record := records[0].(map[string]interface{})
	assert.Equal(t, "active", record["status"])
	assert.Equal(t, []interface{}{"read"}, record["permissions"])
}

func TestGenerateMockNoResponseCodes(t *testing.T) {
	source := contractSource(`"path": "/x", "method": "get", "response": C{},`)
	result := GenerateMock(extractSource(t, "x-get.go", source), 200, realisticMockConfig())

	require.False(t, result.Success)
	assert.Equal(t, "error", result.Type)
	assert.Nil(t, result.Data)
}

func TestGenerateMockNoDescription(t *testing.T) {
	result := GenerateMock(extractSource(t, "none.go", "package contracts\n"), 200, realisticMockConfig())

	require.False(t, result.Success)
	assert.Equal(t, "error", result.Type)
}
