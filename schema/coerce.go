package schema

import (
	"fmt"

	"github.com/lindenhill/gqljit/ast"
)

// CoerceVariableValue coerces a decoded JSON-ish variable value (string, float64, bool, nil,
// []interface{}, map[string]interface{}) to the given input type. It performs the same structural
// recursion for every request; callers that execute the same operation repeatedly are expected to
// memoize the type each variable resolves to rather than re-derive it here.
func CoerceVariableValue(v interface{}, t Type) (interface{}, error) {
	if nn, ok := t.(*NonNullType); ok {
		if v == nil {
			return nil, fmt.Errorf("value is required")
		}
		return CoerceVariableValue(v, nn.Type)
	}

	if v == nil {
		return nil, nil
	}

	switch t := t.(type) {
	case *ScalarType:
		coerced, ok := t.ParseValue(v)
		if !ok {
			return nil, fmt.Errorf("invalid value for %v", t.Name)
		}
		return coerced, nil
	case *EnumType:
		name, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("invalid value for %v", t.Name)
		}
		if _, ok := t.Values[name]; !ok {
			return nil, fmt.Errorf("%v is not a valid value for %v", name, t.Name)
		}
		return name, nil
	case *ListType:
		if list, ok := v.([]interface{}); ok {
			result := make([]interface{}, len(list))
			for i, item := range list {
				coerced, err := CoerceVariableValue(item, t.Type)
				if err != nil {
					return nil, err
				}
				result[i] = coerced
			}
			return result, nil
		}
		coerced, err := CoerceVariableValue(v, t.Type)
		if err != nil {
			return nil, err
		}
		return []interface{}{coerced}, nil
	case *InputObjectType:
		return t.CoerceVariableValue(v)
	}

	return nil, fmt.Errorf("%v cannot be used as an input type", t)
}

// CoerceLiteral coerces an AST value node, as it appears directly in a query document, to the
// given input type. Variables referenced within the literal are resolved from variableValues.
func CoerceLiteral(node ast.Value, t Type, variableValues map[string]interface{}) (interface{}, error) {
	if variable, ok := node.(*ast.Variable); ok {
		if v, ok := variableValues[variable.Name.Name]; ok {
			return v, nil
		}
		return nil, nil
	}

	if nn, ok := t.(*NonNullType); ok {
		if ast.IsNullValue(node) {
			return nil, fmt.Errorf("value is required")
		}
		return CoerceLiteral(node, nn.Type, variableValues)
	}

	if ast.IsNullValue(node) {
		return nil, nil
	}

	switch t := t.(type) {
	case *ScalarType:
		coerced, ok := t.ParseLiteral(node)
		if !ok {
			return nil, fmt.Errorf("invalid literal for %v", t.Name)
		}
		return coerced, nil
	case *EnumType:
		ev, ok := node.(*ast.EnumValue)
		if !ok {
			return nil, fmt.Errorf("invalid literal for %v", t.Name)
		}
		if _, ok := t.Values[ev.Value]; !ok {
			return nil, fmt.Errorf("%v is not a valid value for %v", ev.Value, t.Name)
		}
		return ev.Value, nil
	case *ListType:
		if list, ok := node.(*ast.ListValue); ok {
			result := make([]interface{}, len(list.Values))
			for i, item := range list.Values {
				coerced, err := CoerceLiteral(item, t.Type, variableValues)
				if err != nil {
					return nil, err
				}
				result[i] = coerced
			}
			return result, nil
		}
		coerced, err := CoerceLiteral(node, t.Type, variableValues)
		if err != nil {
			return nil, err
		}
		return []interface{}{coerced}, nil
	case *InputObjectType:
		obj, ok := node.(*ast.ObjectValue)
		if !ok {
			return nil, fmt.Errorf("invalid literal for %v", t.Name)
		}
		return t.CoerceLiteral(obj, variableValues)
	}

	return nil, fmt.Errorf("%v cannot be used as an input type", t)
}
