package contractkit

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractSource(fields string) string {
	return fmt.Sprintf("package contracts\n\nvar Contract = C{\n%s\n}\n", fields)
}

func TestValidateContractMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		fields  string
		missing []string
		present []string
	}{
		{
			name:    "all missing",
			fields:  `"summary": "nothing else",`,
			missing: []string{"path", "method", "response"},
		},
		{
			name:    "method only",
			fields:  `"method": "get",`,
			missing: []string{"path", "response"},
			present: []string{"method"},
		},
		{
			name: "all present",
			fields: `"path": "/users", "method": "get",
	"response": C{"200": C{"description": "ok", "schema": S}},`,
			present: []string{"path", "method", "response"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateContract(extractSource(t, "c.go", contractSource(tt.fields)))

			for _, field := range tt.missing {
				assert.Contains(t, result.Errors, "Contract is missing required field: "+field)
			}
			for _, field := range tt.present {
				assert.NotContains(t, result.Errors, "Contract is missing required field: "+field)
			}
			assert.Equal(t, len(tt.missing) == 0, result.Success)
		})
	}
}

func TestValidateContractNoDescription(t *testing.T) {
	ext := extractSource(t, "none.go", "package contracts\n")
	result := ValidateContract(ext)

	require.False(t, result.Success)
	assert.Len(t, result.Errors, 3)
}

func TestValidateContractMethod(t *testing.T) {
	for _, method := range []string{"get", "post", "put", "delete", "patch"} {
		fields := fmt.Sprintf(`"path": "/x", "method": %q,
	"response": C{"200": C{"description": "ok", "schema": S}},`, method)
		result := ValidateContract(extractSource(t, "c.go", contractSource(fields)))
		assert.True(t, result.Success, method)
	}

	fields := `"path": "/x", "method": "fetch",
	"response": C{"200": C{"description": "ok", "schema": S}},`
	result := ValidateContract(extractSource(t, "c.go", contractSource(fields)))
	require.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Invalid HTTP method")
	assert.Contains(t, result.Errors[0], "fetch")
}

func TestValidateContractPathPrefix(t *testing.T) {
	fields := `"path": "users", "method": "get",
	"response": C{"200": C{"description": "ok", "schema": S}},`
	result := ValidateContract(extractSource(t, "c.go", contractSource(fields)))

	require.False(t, result.Success)
	assert.Contains(t, result.Errors[0], "must start with '/'")
}

func TestValidateContractResponseKeys(t *testing.T) {
	fields := `"path": "/x", "method": "get",
	"response": C{
		"200": C{"description": "ok", "schema": S},
		"abc": C{"description": "bad", "schema": S},
		"99":  C{"description": "low", "schema": S},
		"600": C{"description": "high", "schema": S},
	},`
	result := ValidateContract(extractSource(t, "c.go", contractSource(fields)))

	require.False(t, result.Success)
	require.Len(t, result.Errors, 3)
	for _, key := range []string{`"abc"`, `"99"`, `"600"`} {
		found := false
		for _, err := range result.Errors {
			if strings.Contains(err, key) {
				found = true
			}
		}
		assert.True(t, found, key)
	}
}

func TestValidateContractEmptyResponse(t *testing.T) {
	fields := `"path": "/x", "method": "get", "response": C{},`
	result := ValidateContract(extractSource(t, "c.go", contractSource(fields)))

	require.False(t, result.Success)
	assert.Contains(t, result.Errors, "Response object must define at least one status code")
}

func TestValidateContractAuthorization(t *testing.T) {
	tests := []struct {
		name   string
		auth   string
		errors []string
	}{
		{
			name: "roles as string",
			auth: `"auth": C{"requiresAuthentication": true, "authorization": C{"roles": "admin"}},`,
		},
		{
			name: "roles as string array",
			auth: `"auth": C{"authorization": C{"roles": []string{"admin", "editor"}}},`,
		},
		{
			name:   "roles as number",
			auth:   `"auth": C{"authorization": C{"roles": 7}},`,
			errors: []string{"auth.authorization.roles must be a string or an array of strings"},
		},
		{
			name:   "scopes as mixed array",
			auth:   `"auth": C{"authorization": C{"scopes": []any{"read", 2}}},`,
			errors: []string{"auth.authorization.scopes must be a string or an array of strings"},
		},
		{
			name:   "claims not an array",
			auth:   `"auth": C{"authorization": C{"claims": "nope"}},`,
			errors: []string{"auth.authorization.claims must be an array"},
		},
		{
			name: "claims missing fields",
			auth: `"auth": C{"authorization": C{"claims": []C{
		C{"userClaimPath": "sub"},
		C{"routeParamName": "userId"},
	}}},`,
			errors: []string{
				"Claim at index 0 is missing routeParamName",
				"Claim at index 1 is missing userClaimPath",
			},
		},
		{
			name: "claims complete",
			auth: `"auth": C{"authorization": C{"claims": []C{
		C{"userClaimPath": "sub", "routeParamName": "userId"},
	}}},`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := `"path": "/x", "method": "get",
	"response": C{"200": C{"description": "ok", "schema": S}},
	` + tt.auth
			result := ValidateContract(extractSource(t, "c.go", contractSource(fields)))

			assert.Equal(t, len(tt.errors) == 0, result.Success)
			for _, want := range tt.errors {
				assert.Contains(t, result.Errors, want)
			}
		})
	}
}

func TestValidateContractPlaceholderCoverageWarning(t *testing.T) {
	fields := `"path": "/users/:userId/books/:bookId", "method": "get",
	"params": C{"userId": S},
	"response": C{"200": C{"description": "ok", "schema": S}},`
	result := ValidateContract(extractSource(t, "c.go", contractSource(fields)))

	require.True(t, result.Success)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], ":bookId")
}

func TestValidateContractDetails(t *testing.T) {
	r := require.New(t)
	result := ValidateContract(extractSource(t, "user-get.go", userGetContract))

	r.True(result.Success)
	r.NotNil(result.Details)
	assert.Equal(t, "user-get", result.Details["contract"])
	assert.Equal(t, "/users/:userId", result.Details["path"])
	assert.Equal(t, "get", result.Details["method"])
	assert.Equal(t, []string{"users"}, result.Details["tags"])
	assert.Equal(t, "Fetch a user by id", result.Details["summary"])
	assert.Equal(t, true, result.Details["hasParams"])
	assert.Equal(t, true, result.Details["hasQuery"])
	assert.Equal(t, false, result.Details["hasBody"])
	assert.Equal(t, []string{"200", "404"}, result.Details["responseCodes"])
	assert.Equal(t, false, result.Details["requiresAuthentication"])
}

func TestValidateContractDetailNormalization(t *testing.T) {
	fields := `"path": "/x", "method": "get", "tags": "single",
	"auth": C{"requiresAuthentication": true},
	"response": C{"200": C{"description": "ok", "schema": S}},`
	result := ValidateContract(extractSource(t, "c.go", contractSource(fields)))

	require.True(t, result.Success)
	assert.Equal(t, []string{"single"}, result.Details["tags"])
	assert.Equal(t, defaultSummary, result.Details["summary"])
	assert.Equal(t, true, result.Details["requiresAuthentication"])
}

func TestValidateRequestType(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		errors   []string
		warnings []string
	}{
		{
			name: "placeholders without params schema",
			source: contractSource(`"path": "/users/:userId", "method": "get",
	"response": C{"200": C{"description": "ok", "schema": S}},`),
			errors: []string{"Path declares parameters (userId) but no params schema is defined"},
		},
		{
			name:   "query on get without QuerySchema export",
			source: contractSource(`"path": "/users", "method": "get", "query": QueryRef,`),
			warnings: []string{
				"Contract declares query but no QuerySchema export was found",
			},
		},
		{
			name:     "post without body",
			source:   contractSource(`"path": "/users", "method": "post",`),
			warnings: []string{"POST contracts usually declare a body schema"},
		},
		{
			name:   "complete request surface",
			source: userGetContract,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateRequestType(extractSource(t, "user-get.go", tt.source))

			assert.Equal(t, len(tt.errors) == 0, result.Success)
			for _, want := range tt.errors {
				assert.Contains(t, result.Errors, want)
			}
			for _, want := range tt.warnings {
				assert.Contains(t, result.Warnings, want)
			}
		})
	}
}

func TestValidateResponseTypeEmptyResponse(t *testing.T) {
	source := contractSource(`"path": "/x", "method": "get", "response": C{},`)
	result := ValidateResponseType(extractSource(t, "c.go", source))

	require.False(t, result.Success)
	assert.Contains(t, result.Errors, "Response object must define at least one status code")
}

func TestValidateResponseTypeMissingResponse(t *testing.T) {
	source := contractSource(`"path": "/x", "method": "get",`)
	result := ValidateResponseType(extractSource(t, "c.go", source))

	require.False(t, result.Success)
	assert.Contains(t, result.Errors, "Contract is missing required field: response")
}

func TestValidateResponseTypeWarnings(t *testing.T) {
	source := contractSource(`"path": "/x", "method": "get",
	"response": C{"201": C{"description": "odd", "schema": S}},`)
	result := ValidateResponseType(extractSource(t, "c.go", source))

	require.True(t, result.Success)
	assert.Contains(t, result.Warnings, "No ResponseSchema export was found")
	assert.Contains(t, result.Warnings, "No top-level Response type alias was found")
	assert.Contains(t, result.Warnings, "Contract declares no error status codes (>= 400)")
	assert.Contains(t, result.Warnings, "GET contracts conventionally declare a 200 response")
}

func TestValidateResponseTypeConventionalCodes(t *testing.T) {
	tests := []struct {
		method string
		code   string
		warn   bool
	}{
		{"get", "200", false},
		{"post", "201", false},
		{"post", "200", false},
		{"post", "204", true},
		{"delete", "204", false},
		{"delete", "202", true},
		{"put", "200", false},
		{"patch", "202", true},
	}
	for _, tt := range tests {
		t.Run(tt.method+"_"+tt.code, func(t *testing.T) {
			source := contractSource(fmt.Sprintf(`"path": "/x", "method": %q,
	"response": C{%q: C{"description": "ok", "schema": S}},`, tt.method, tt.code))
			result := ValidateResponseType(extractSource(t, "c.go", source))

			found := false
			for _, warning := range result.Warnings {
				if strings.Contains(warning, "conventionally declare") {
					found = true
				}
			}
			assert.Equal(t, tt.warn, found)
		})
	}
}

func TestValidateResponseTypeCleanContract(t *testing.T) {
	result := ValidateResponseType(extractSource(t, "user-get.go", userGetContract))

	require.True(t, result.Success)
	assert.Empty(t, result.Errors)
	assert.NotContains(t, result.Warnings, "No ResponseSchema export was found")
	assert.NotContains(t, result.Warnings, "No top-level Response type alias was found")
}
