package contractkit

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Methods a contract may declare, the only accepted spellings.
var contractMethods = []string{"get", "post", "put", "delete", "patch"}

func isContractMethod(method string) bool {
	for _, m := range contractMethods {
		if m == method {
			return true
		}
	}
	return false
}

// Description is the structured, literal-resolved form of one contract
// declaration. It is immutable after extraction and safe to share between
// concurrent validation calls.
type Description struct {
	name   string
	fields *ObjectValue
}

func newDescription(location string, fields *ObjectValue) *Description {
	base := filepath.Base(location)
	return &Description{
		name:   strings.TrimSuffix(base, filepath.Ext(base)),
		fields: fields,
	}
}

// Name is the contract's base file name without extension. The mock
// synthesizer keys its shape heuristics on it.
func (d *Description) Name() string {
	if d == nil {
		return ""
	}
	return d.name
}

func (d *Description) Field(name string) (*LiteralValue, bool) {
	if d == nil {
		return nil, false
	}
	return d.fields.Get(name)
}

func (d *Description) Has(name string) bool {
	_, ok := d.Field(name)
	return ok
}

// Fields exposes the underlying ordered object, mainly for serialization.
func (d *Description) Fields() *ObjectValue {
	if d == nil {
		return nil
	}
	return d.fields
}

func (d *Description) Path() string {
	v, _ := d.Field("path")
	s, _ := v.AsString()
	return s
}

func (d *Description) Method() string {
	v, _ := d.Field("method")
	s, _ := v.AsString()
	return s
}

// Responses returns the response object, or nil when absent or not an
// object literal. Key order matches declaration order.
func (d *Description) Responses() *ObjectValue {
	v, ok := d.Field("response")
	if !ok || v.Kind != KindObject {
		return nil
	}
	return v.Object
}

// ResponseCodes lists declared status-code keys in declaration order.
func (d *Description) ResponseCodes() []string {
	return d.Responses().Keys()
}

// HasResponseCode reports whether the contract declares the given key.
func (d *Description) HasResponseCode(code string) bool {
	return d.Responses().Has(code)
}

// Authorization digs out auth.authorization when both levels are object
// literals.
func (d *Description) Authorization() *ObjectValue {
	auth, ok := d.Field("auth")
	if !ok || auth.Kind != KindObject {
		return nil
	}
	authz, ok := auth.Object.Get("authorization")
	if !ok || authz.Kind != KindObject {
		return nil
	}
	return authz.Object
}

// RequiresAuthentication resolves auth.requiresAuthentication, false when
// absent or not a bool literal.
func (d *Description) RequiresAuthentication() bool {
	auth, ok := d.Field("auth")
	if !ok || auth.Kind != KindObject {
		return false
	}
	flag, ok := auth.Object.Get("requiresAuthentication")
	if !ok || flag.Kind != KindBool {
		return false
	}
	return flag.Bool
}

var placeholderPattern = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*)`)

// PathPlaceholders extracts the :name segments of a URL template in order
// of appearance.
func PathPlaceholders(path string) []string {
	var names []string
	for _, match := range placeholderPattern.FindAllStringSubmatch(path, -1) {
		names = append(names, match[1])
	}
	return names
}
