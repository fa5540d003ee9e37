package contractkit

import (
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/tidwall/gjson"
)

// collectionKeys are the envelope keys accepted in place of a bare array on
// GET list responses.
var collectionKeys = []string{"data", "items", "results"}

// ValidateRequestAgainstContract checks a concrete request document against
// the contract: params/query container shape, path-placeholder coverage and
// method/body conventions. Deep schema validation of the contents is the
// structural schema checker's job, not this layer's.
func ValidateRequestAgainstContract(ext *Extraction, request []byte) ValidationResult {
	var diag diagnostics
	desc := ext.Description
	if desc == nil {
		diag.errorf("No contract description could be extracted")
		return diag.result()
	}
	doc, ok := parseDocument(request)
	if !ok {
		diag.errorf("Unable to parse request payload as JSON")
		return diag.result()
	}

	for _, section := range []string{"params", "query"} {
		value := doc.Get(section)
		if !desc.Has(section) || !value.Exists() {
			continue
		}
		if !value.IsObject() {
			diag.errorf("Request %s must be an object", section)
			continue
		}
		detailKey := "providedParams"
		if section == "query" {
			detailKey = "providedQuery"
		}
		diag.detail(detailKey, objectKeys(value))
	}

	params := doc.Get("params")
	for _, name := range PathPlaceholders(desc.Path()) {
		if !params.Get(name).Exists() {
			diag.errorf("Missing required path parameter: %s", name)
		}
	}

	body := doc.Get("body")
	switch method := desc.Method(); method {
	case "get":
		if body.Exists() && body.Type != gjson.Null {
			diag.warnf("GET requests should not include a body")
		}
	case "post", "put", "patch":
		if !body.Exists() {
			diag.warnf("%s requests usually include a body", strings.ToUpper(method))
		}
	}

	checkClaimPaths(desc, doc, &diag)

	diag.detail("path", desc.Path())
	diag.detail("method", desc.Method())
	return diag.result()
}

// checkClaimPaths resolves each declared userClaimPath against the request's
// user object, when one was supplied. An unresolvable path is advisory only;
// enforcement belongs to the host's auth layer.
func checkClaimPaths(desc *Description, doc gjson.Result, diag *diagnostics) {
	authz := desc.Authorization()
	if authz == nil {
		return
	}
	claims, ok := authz.Get("claims")
	if !ok || claims.Kind != KindArray {
		return
	}
	user := doc.Get("user")
	if !user.Exists() || !user.IsObject() {
		return
	}

	for _, claim := range claims.Array {
		if claim.Kind != KindObject {
			continue
		}
		pathValue, _ := claim.Object.Get("userClaimPath")
		path, isString := pathValue.AsString()
		if !isString || path == "" {
			continue
		}
		if !strings.HasPrefix(path, "$") {
			path = "$." + path
		}
		if _, err := jsonpath.Get(path, user.Value()); err != nil {
			diag.warnf("User claim path %q could not be resolved against the request user", path)
		}
	}
}

// ValidateResponseAgainstContract checks a concrete response document for a
// given status code. An undeclared status code fails immediately with the
// declared codes as a suggestion; payload shape is not inspected in that
// case.
func ValidateResponseAgainstContract(ext *Extraction, response []byte, statusCode int) ValidationResult {
	var diag diagnostics
	desc := ext.Description
	if desc == nil {
		diag.errorf("No contract description could be extracted")
		return diag.result()
	}

	codes := desc.ResponseCodes()
	if len(codes) == 0 {
		diag.errorf("Contract does not declare any response status codes")
		return diag.result()
	}
	if !desc.HasResponseCode(strconv.Itoa(statusCode)) {
		diag.errorf("Contract does not declare status code %d. Declared status codes: %s",
			statusCode, strings.Join(codes, ", "))
		return diag.result()
	}

	doc, ok := parseDocument(response)
	if !ok {
		diag.errorf("Unable to parse response payload as JSON")
		return diag.result()
	}
	if doc.Type == gjson.Null {
		diag.errorf("Response payload must not be null")
		return diag.result()
	}
	if !doc.IsObject() && !doc.IsArray() {
		diag.errorf("Response payload must be an object or an array")
		return diag.result()
	}

	method := desc.Method()
	if method == "get" && statusCode == 200 && !doc.IsArray() && !hasAnyKey(doc, collectionKeys) {
		diag.warnf("GET 200 responses usually return an array or a collection envelope (%s)",
			strings.Join(collectionKeys, "/"))
	}
	if method == "post" && statusCode == 201 && !hasAnyKey(doc, []string{"id", "_id"}) {
		diag.warnf("POST 201 responses usually include the created resource id")
	}

	diag.detail("statusCode", statusCode)
	diag.detail("responseCodes", codes)
	return diag.result()
}

// parseDocument parses a raw payload, treating an empty payload as an empty
// object so absent optional sections read cleanly.
func parseDocument(raw []byte) (gjson.Result, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		trimmed = "{}"
	}
	if !gjson.Valid(trimmed) {
		return gjson.Result{}, false
	}
	return gjson.Parse(trimmed), true
}

func objectKeys(value gjson.Result) []string {
	keys := []string{}
	value.ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	return keys
}

func hasAnyKey(doc gjson.Result, keys []string) bool {
	for _, key := range keys {
		if doc.Get(key).Exists() {
			return true
		}
	}
	return false
}
