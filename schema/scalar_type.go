package schema

import "github.com/lindenhill/gqljit/ast"

// ScalarType represents a leaf type whose values are coerced by three independent hooks, mirroring
// the reference GraphQL scalar contract: ParseLiteral handles values written directly in query
// documents, ParseValue handles values supplied through variables, and Serialize converts an
// internal Go value into something JSON-representable for the response.
type ScalarType struct {
	Name        string
	Description string
	Directives  []*Directive

	// ParseLiteral coerces a literal AST value. The second return value is false if the literal
	// cannot be coerced to this type.
	ParseLiteral func(ast.Value) (interface{}, bool)

	// ParseValue coerces a value that arrived via request variables (so it is already a decoded
	// JSON-ish Go value: string, float64, bool, nil, []interface{}, map[string]interface{}). The
	// second return value is false if the value cannot be coerced.
	ParseValue func(interface{}) (interface{}, bool)

	// Serialize converts a resolver's returned value into output form. It returns an error if the
	// value cannot be represented as this scalar.
	Serialize func(interface{}) (interface{}, error)
}

func (t *ScalarType) String() string {
	return t.Name
}

func (t *ScalarType) IsInputType() bool {
	return true
}

func (t *ScalarType) IsOutputType() bool {
	return true
}

func (t *ScalarType) IsSubTypeOf(other Type) bool {
	return t.IsSameType(other)
}

func (t *ScalarType) IsSameType(other Type) bool {
	return t == other
}

func (t *ScalarType) NamedType() string {
	return t.Name
}

func IsScalarType(t Type) bool {
	_, ok := t.(*ScalarType)
	return ok
}
