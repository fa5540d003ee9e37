package contractkit

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// LiteralKind discriminates the variants of a LiteralValue.
type LiteralKind int

const (
	KindString LiteralKind = iota
	KindNumber
	KindBool
	KindNull
	KindObject
	KindArray
	// KindVerbatim marks an expression the extractor could not resolve to a
	// literal. Source holds the expression text exactly as written.
	KindVerbatim
)

func (k LiteralKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindVerbatim:
		return "verbatim"
	}
	return "unknown"
}

// LiteralValue is the statically resolved form of a contract expression.
// Exactly one variant is populated, selected by Kind.
type LiteralValue struct {
	Kind   LiteralKind
	Str    string
	Num    float64
	Bool   bool
	Object *ObjectValue
	Array  []*LiteralValue
	Source string
}

func StringValue(s string) *LiteralValue   { return &LiteralValue{Kind: KindString, Str: s} }
func NumberValue(n float64) *LiteralValue  { return &LiteralValue{Kind: KindNumber, Num: n} }
func BoolValue(b bool) *LiteralValue       { return &LiteralValue{Kind: KindBool, Bool: b} }
func NullValue() *LiteralValue             { return &LiteralValue{Kind: KindNull} }
func ArrayValue(elems []*LiteralValue) *LiteralValue {
	return &LiteralValue{Kind: KindArray, Array: elems}
}
func VerbatimValue(src string) *LiteralValue {
	return &LiteralValue{Kind: KindVerbatim, Source: src}
}

// AsString returns the string payload, only for true string literals.
// Verbatim values do not count as strings.
func (v *LiteralValue) AsString() (string, bool) {
	if v == nil || v.Kind != KindString {
		return "", false
	}
	return v.Str, true
}

// AsStrings flattens a string literal or an array of string literals into a
// slice. Used for fields like tags, roles and scopes that accept both forms.
func (v *LiteralValue) AsStrings() ([]string, bool) {
	if v == nil {
		return nil, false
	}
	switch v.Kind {
	case KindString:
		return []string{v.Str}, true
	case KindArray:
		out := make([]string, 0, len(v.Array))
		for _, elem := range v.Array {
			s, ok := elem.AsString()
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// Describe renders the value for diagnostics: string payloads and verbatim
// source are shown as written, everything else via its JSON form.
func (v *LiteralValue) Describe() string {
	if v == nil {
		return "<absent>"
	}
	switch v.Kind {
	case KindString:
		return v.Str
	case KindVerbatim:
		return v.Source
	}
	data, err := json.Marshal(v)
	if err != nil {
		return v.Kind.String()
	}
	return string(data)
}

// Interface converts the value into plain JSON-compatible Go values.
// Object field order is lost; callers needing order use ObjectValue directly.
func (v *LiteralValue) Interface() interface{} {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return v.Num
	case KindBool:
		return v.Bool
	case KindNull:
		return nil
	case KindObject:
		out := make(map[string]interface{}, v.Object.Len())
		for _, key := range v.Object.Keys() {
			field, _ := v.Object.Get(key)
			out[key] = field.Interface()
		}
		return out
	case KindArray:
		out := make([]interface{}, 0, len(v.Array))
		for _, elem := range v.Array {
			out = append(out, elem.Interface())
		}
		return out
	case KindVerbatim:
		return v.Source
	}
	return nil
}

// MarshalJSON renders literals as their natural JSON form and verbatim
// expressions as a tagged wrapper so they stay distinguishable from strings.
func (v *LiteralValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(v.Str)
	case KindNumber:
		return json.Marshal(v.Num)
	case KindBool:
		return json.Marshal(v.Bool)
	case KindNull:
		return []byte("null"), nil
	case KindObject:
		return v.Object.MarshalJSON()
	case KindArray:
		if v.Array == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.Array)
	case KindVerbatim:
		return json.Marshal(map[string]string{"$verbatim": v.Source})
	}
	return []byte("null"), nil
}

// ObjectValue is an object literal with field order preserved as declared.
type ObjectValue struct {
	keys   []string
	fields map[string]*LiteralValue
}

func NewObjectValue() *ObjectValue {
	return &ObjectValue{fields: make(map[string]*LiteralValue)}
}

func ObjectOf(object *ObjectValue) *LiteralValue {
	return &LiteralValue{Kind: KindObject, Object: object}
}

// Set adds or replaces a field. A replaced field keeps its original position.
func (o *ObjectValue) Set(key string, value *LiteralValue) {
	if _, exists := o.fields[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.fields[key] = value
}

func (o *ObjectValue) Get(key string) (*LiteralValue, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.fields[key]
	return v, ok
}

func (o *ObjectValue) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Keys returns field names in declaration order.
func (o *ObjectValue) Keys() []string {
	if o == nil {
		return nil
	}
	return o.keys
}

func (o *ObjectValue) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// MarshalJSON writes fields in declaration order rather than sorted order.
func (o *ObjectValue) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(key))
		buf.WriteByte(':')
		data, err := json.Marshal(o.fields[key])
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
