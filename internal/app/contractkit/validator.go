package contractkit

import (
	"strconv"
	"strings"
)

const defaultSummary = "No summary provided"

// requiredFields are the only fields a valid contract must declare.
var requiredFields = []string{"path", "method", "response"}

// conventionalStatusCodes maps a method to the success codes it is expected
// to declare at least one of.
var conventionalStatusCodes = map[string][]string{
	"get":    {"200"},
	"post":   {"201", "200"},
	"put":    {"200"},
	"patch":  {"200"},
	"delete": {"204", "200"},
}

// ValidateContract applies the structural rule set to an extracted contract
// in fixed order, collecting every violation instead of stopping at the
// first. Warnings never flip the outcome.
func ValidateContract(ext *Extraction) ValidationResult {
	var diag diagnostics
	desc := ext.Description

	for _, field := range requiredFields {
		if !desc.Has(field) {
			diag.errorf("Contract is missing required field: %s", field)
		}
	}

	if method, ok := desc.Field("method"); ok {
		name, isString := method.AsString()
		if !isString || !isContractMethod(name) {
			diag.errorf("Invalid HTTP method: %q. Must be one of: %s",
				method.Describe(), strings.Join(contractMethods, ", "))
		}
	}

	if path, ok := desc.Field("path"); ok {
		name, isString := path.AsString()
		if !isString || !strings.HasPrefix(name, "/") {
			diag.errorf("Contract path must start with '/', got %q", path.Describe())
		}
	}

	if response, ok := desc.Field("response"); ok {
		validateResponseKeys(response, &diag)
	}

	validateAuthorization(desc, &diag)
	checkPlaceholderCoverage(desc, &diag)

	if len(diag.errors) == 0 {
		diag.detail("contract", desc.Name())
		diag.detail("path", desc.Path())
		diag.detail("method", desc.Method())
		diag.detail("tags", normalizedTags(desc))
		diag.detail("summary", contractSummary(desc))
		diag.detail("hasParams", desc.Has("params"))
		diag.detail("hasQuery", desc.Has("query"))
		diag.detail("hasBody", desc.Has("body"))
		diag.detail("responseCodes", desc.ResponseCodes())
		diag.detail("requiresAuthentication", desc.RequiresAuthentication())
	}
	return diag.result()
}

// validateResponseKeys checks the response mapping: it must be an object
// with at least one entry, and every key must parse as an integer status
// code in [100,599]. Each offending key is its own error.
func validateResponseKeys(response *LiteralValue, diag *diagnostics) {
	if response.Kind != KindObject {
		diag.errorf("Contract response must be an object keyed by status code")
		return
	}
	if response.Object.Len() == 0 {
		diag.errorf("Response object must define at least one status code")
		return
	}
	for _, key := range response.Object.Keys() {
		if !isStatusCodeKey(key) {
			diag.errorf("Invalid response status code: %q. Must be an integer between 100 and 599", key)
		}
	}
}

func isStatusCodeKey(key string) bool {
	code, err := strconv.Atoi(key)
	return err == nil && code >= 100 && code <= 599
}

func validateAuthorization(desc *Description, diag *diagnostics) {
	authz := desc.Authorization()
	if authz == nil {
		return
	}

	for _, field := range []string{"roles", "scopes"} {
		value, ok := authz.Get(field)
		if !ok {
			continue
		}
		if _, valid := value.AsStrings(); !valid {
			diag.errorf("auth.authorization.%s must be a string or an array of strings", field)
		}
	}

	claims, ok := authz.Get("claims")
	if !ok {
		return
	}
	if claims.Kind != KindArray {
		diag.errorf("auth.authorization.claims must be an array")
		return
	}
	for i, claim := range claims.Array {
		if claim.Kind != KindObject {
			diag.errorf("Claim at index %d must be an object", i)
			continue
		}
		for _, field := range []string{"userClaimPath", "routeParamName"} {
			value, present := claim.Object.Get(field)
			name, isString := value.AsString()
			if !present || (isString && name == "") {
				diag.errorf("Claim at index %d is missing %s", i, field)
			}
		}
	}
}

// checkPlaceholderCoverage warns when a path placeholder has no matching
// entry in an inline params literal. Opaque params references cannot be
// inspected, so they are taken on trust.
func checkPlaceholderCoverage(desc *Description, diag *diagnostics) {
	params, ok := desc.Field("params")
	if !ok || params.Kind != KindObject {
		return
	}
	for _, name := range PathPlaceholders(desc.Path()) {
		if !params.Object.Has(name) {
			diag.warnf("Path parameter %q has no matching entry in the params schema", ":"+name)
		}
	}
}

// ValidateRequestType checks the request-facing half of a contract: path
// placeholders require a params schema, and query/body declarations are
// cross-checked against the method and the auxiliary exports.
func ValidateRequestType(ext *Extraction) ValidationResult {
	var diag diagnostics
	desc := ext.Description

	path, hasPath := desc.Field("path")
	if !hasPath {
		diag.errorf("Contract is missing required field: path")
	}

	if hasPath {
		if name, ok := path.AsString(); ok {
			placeholders := PathPlaceholders(name)
			if len(placeholders) > 0 && !desc.Has("params") {
				diag.errorf("Path declares parameters (%s) but no params schema is defined",
					strings.Join(placeholders, ", "))
			}
			diag.detail("pathParams", placeholders)
		}
	}

	method := desc.Method()
	if desc.Has("query") && method == "get" && !ext.HasAuxiliary("QuerySchema") {
		diag.warnf("Contract declares query but no QuerySchema export was found")
	}
	switch method {
	case "post", "put", "patch":
		if !desc.Has("body") {
			diag.warnf("%s contracts usually declare a body schema", strings.ToUpper(method))
		}
	}

	diag.detail("method", method)
	diag.detail("hasBody", desc.Has("body"))
	return diag.result()
}

// ValidateResponseType checks the response-facing half of a contract:
// declared status codes, conventional success codes per method, and the
// presence of the response-related auxiliary declarations.
func ValidateResponseType(ext *Extraction) ValidationResult {
	var diag diagnostics
	desc := ext.Description

	response, ok := desc.Field("response")
	switch {
	case !ok:
		diag.errorf("Contract is missing required field: response")
	case response.Kind != KindObject:
		diag.errorf("Contract response must be an object keyed by status code")
	case response.Object.Len() == 0:
		diag.errorf("Response object must define at least one status code")
	default:
		checkResponseDescriptors(response.Object, &diag)
	}

	if !ext.HasAuxiliary("ResponseSchema") {
		diag.warnf("No ResponseSchema export was found")
	}
	if !ext.HasAuxiliary(responseAliasName) {
		diag.warnf("No top-level Response type alias was found")
	}

	codes := desc.ResponseCodes()
	if len(codes) > 0 && !hasErrorStatusCode(codes) {
		diag.warnf("Contract declares no error status codes (>= 400)")
	}

	method := desc.Method()
	if expected, known := conventionalStatusCodes[method]; known && len(codes) > 0 {
		if !declaresAnyOf(desc, expected) {
			diag.warnf("%s contracts conventionally declare a %s response",
				strings.ToUpper(method), strings.Join(expected, " or "))
		}
	}

	diag.detail("responseCodes", codes)
	return diag.result()
}

// checkResponseDescriptors warns for response entries lacking the
// description/schema pair every descriptor is expected to carry.
func checkResponseDescriptors(responses *ObjectValue, diag *diagnostics) {
	for _, code := range responses.Keys() {
		descriptor, _ := responses.Get(code)
		if descriptor.Kind != KindObject {
			continue
		}
		if !descriptor.Object.Has("description") {
			diag.warnf("Response %s is missing a description", code)
		}
		if !descriptor.Object.Has("schema") {
			diag.warnf("Response %s is missing a schema reference", code)
		}
	}
}

func hasErrorStatusCode(codes []string) bool {
	for _, key := range codes {
		if code, err := strconv.Atoi(key); err == nil && code >= 400 {
			return true
		}
	}
	return false
}

func declaresAnyOf(desc *Description, codes []string) bool {
	for _, code := range codes {
		if desc.HasResponseCode(code) {
			return true
		}
	}
	return false
}

func normalizedTags(desc *Description) []string {
	tags, ok := desc.Field("tags")
	if !ok {
		return []string{}
	}
	if values, valid := tags.AsStrings(); valid {
		return values
	}
	return []string{}
}

func contractSummary(desc *Description) string {
	summary, ok := desc.Field("summary")
	if !ok {
		return defaultSummary
	}
	if s, valid := summary.AsString(); valid {
		return s
	}
	return defaultSummary
}
