package contractkit

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// contractIdent is the top-level var holding the canonical contract literal.
const contractIdent = "Contract"

// auxiliaryNames are companion declarations whose presence (by name only) is
// cross-checked by the validator. Their internal shape is never inspected.
var auxiliaryNames = map[string]bool{
	"ParamsSchema":   true,
	"QuerySchema":    true,
	"ResponseSchema": true,
}

// responseAliasName is the top-level type alias expected next to a contract.
const responseAliasName = "Response"

// Extraction is the outcome of introspecting one contract source file.
// Description is nil when no Contract var with a composite-literal
// initializer was found; that is reported downstream as missing fields,
// not as an extraction fault.
type Extraction struct {
	Description *Description
	Auxiliary   map[string]bool
	File        *ast.File
}

// HasAuxiliary reports whether a companion declaration with the given name
// was present at the top level of the contract source.
func (x *Extraction) HasAuxiliary(name string) bool {
	return x != nil && x.Auxiliary[name]
}

// Extract parses raw contract source and reconstructs the structured
// description of its Contract declaration without evaluating any code.
// Syntax errors are tolerated: whatever declarations survived the parse are
// still inspected.
func Extract(location string, src []byte) *Extraction {
	ext := &Extraction{Auxiliary: make(map[string]bool)}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, location, src, parser.ParseComments|parser.AllErrors)
	if err != nil {
		log.Warnf("contract %q parsed with syntax errors: %s", location, err)
	}
	if file == nil {
		return ext
	}
	ext.File = file

	res := resolver{fset: fset, src: src}
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok {
			continue
		}
		switch gen.Tok {
		case token.VAR:
			for _, spec := range gen.Specs {
				vs, ok := spec.(*ast.ValueSpec)
				if !ok {
					continue
				}
				for i, name := range vs.Names {
					if auxiliaryNames[name.Name] {
						ext.Auxiliary[name.Name] = true
					}
					if name.Name != contractIdent || i >= len(vs.Values) {
						continue
					}
					lit, ok := vs.Values[i].(*ast.CompositeLit)
					if !ok {
						log.Warnf("contract %q: Contract is not a composite literal", location)
						continue
					}
					value := res.composite(lit)
					if value.Kind == KindObject {
						ext.Description = newDescription(location, value.Object)
					}
				}
			}
		case token.TYPE:
			for _, spec := range gen.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if ok && ts.Name.Name == responseAliasName {
					ext.Auxiliary[responseAliasName] = true
				}
			}
		}
	}
	return ext
}

// resolver turns expressions into LiteralValues. It holds the file set and
// raw source so unresolvable expressions can be sliced out verbatim.
type resolver struct {
	fset *token.FileSet
	src  []byte
}

// value resolves a single expression. The switch is exhaustive over the
// kinds the engine understands; every other expression kind falls through
// to verbatim capture, never to evaluation.
func (r resolver) value(expr ast.Expr) *LiteralValue {
	switch e := expr.(type) {
	case *ast.BasicLit:
		return r.basic(e)
	case *ast.Ident:
		switch e.Name {
		case "true":
			return BoolValue(true)
		case "false":
			return BoolValue(false)
		case "nil":
			return NullValue()
		}
		return r.verbatim(e)
	case *ast.CompositeLit:
		return r.composite(e)
	case *ast.UnaryExpr:
		if e.Op == token.SUB {
			inner := r.value(e.X)
			if inner.Kind == KindNumber {
				return NumberValue(-inner.Num)
			}
		}
		return r.verbatim(e)
	case *ast.ParenExpr:
		return r.value(e.X)
	}
	return r.verbatim(expr)
}

func (r resolver) basic(lit *ast.BasicLit) *LiteralValue {
	switch lit.Kind {
	case token.STRING:
		s, err := strconv.Unquote(lit.Value)
		if err != nil {
			return r.verbatim(lit)
		}
		return StringValue(s)
	case token.INT, token.FLOAT:
		n, err := strconv.ParseFloat(lit.Value, 64)
		if err != nil {
			return r.verbatim(lit)
		}
		return NumberValue(n)
	}
	return r.verbatim(lit)
}

// composite resolves object-style literals (keyed elements) into ordered
// objects and element lists into arrays. An empty literal is classified by
// its declared type: array types become empty arrays, all else an empty
// object, so an empty response map still validates as an object.
func (r resolver) composite(lit *ast.CompositeLit) *LiteralValue {
	if len(lit.Elts) == 0 {
		if _, isArray := lit.Type.(*ast.ArrayType); isArray {
			return ArrayValue(nil)
		}
		return ObjectOf(NewObjectValue())
	}

	if _, keyed := lit.Elts[0].(*ast.KeyValueExpr); !keyed {
		elems := make([]*LiteralValue, 0, len(lit.Elts))
		for _, elt := range lit.Elts {
			elems = append(elems, r.value(elt))
		}
		return ArrayValue(elems)
	}

	object := NewObjectValue()
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		object.Set(r.key(kv.Key), r.value(kv.Value))
	}
	return ObjectOf(object)
}

// key renders a map or struct key as its field name. Non-literal keys keep
// their source text.
func (r resolver) key(expr ast.Expr) string {
	switch k := expr.(type) {
	case *ast.BasicLit:
		if k.Kind == token.STRING {
			if s, err := strconv.Unquote(k.Value); err == nil {
				return s
			}
		}
		return k.Value
	case *ast.Ident:
		return k.Name
	}
	return r.text(expr)
}

func (r resolver) verbatim(expr ast.Expr) *LiteralValue {
	return VerbatimValue(r.text(expr))
}

// text slices the expression's exact source out of the raw file bytes.
func (r resolver) text(expr ast.Expr) string {
	start := r.fset.Position(expr.Pos()).Offset
	end := r.fset.Position(expr.End()).Offset
	if start < 0 || end > len(r.src) || start >= end {
		return ""
	}
	return string(r.src[start:end])
}
