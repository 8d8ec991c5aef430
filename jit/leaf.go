package jit

import (
	"fmt"
	"math"

	"github.com/lindenhill/gqljit/schema"
)

// leafSerializer is the compiled output-side coercion for a single leaf type, wrapping
// schema.ScalarType.Serialize (or an enum/custom pass-through) per spec.md §4.G.
type leafSerializer func(value interface{}) (interface{}, error)

func compileLeafSerializer(t schema.NamedType, custom map[string]func(interface{}) (interface{}, error), disable bool) leafSerializer {
	if custom != nil {
		if fn, ok := custom[t.NamedType()]; ok {
			return leafSerializer(fn)
		}
	}

	if scalar, ok := t.(*schema.ScalarType); ok {
		if disable && isSpecStandardScalar(scalar) {
			return passThroughSerializer
		}
		return scalar.Serialize
	}

	if _, ok := t.(*schema.EnumType); ok {
		if disable {
			return passThroughSerializer
		}
		return func(value interface{}) (interface{}, error) {
			if s, ok := value.(string); ok {
				return s, nil
			}
			return nil, errLeafInvalid(t.NamedType(), value)
		}
	}

	return passThroughSerializer
}

func passThroughSerializer(value interface{}) (interface{}, error) {
	return value, nil
}

func isSpecStandardScalar(t *schema.ScalarType) bool {
	_, ok := schema.BuiltInTypes[t.Name]
	return ok
}

func errLeafInvalid(typeName string, value interface{}) error {
	return &Error{
		Kind:    KindLeafInvalid,
		Message: "Expected a value of type \"" + typeName + "\" but received: " + leafRepr(value),
	}
}

func leafRepr(value interface{}) string {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) {
			return "NaN"
		}
	case nil:
		return "undefined"
	}
	return fmt.Sprintf("%v", value)
}
