package jit

import (
	"fmt"
	"reflect"

	"github.com/lindenhill/gqljit/ast"
	"github.com/lindenhill/gqljit/schema"
)

// compiledVariable is one entry of a per-operation variable-parsing routine, built once at compile
// time from an operation's variable definitions.
type compiledVariable struct {
	Name         string
	Type         schema.Type
	DefaultValue ast.Value
	Node         *ast.VariableDefinition
}

// variableParser is the specialized routine spec.md §4.D describes: built once per (schema,
// operation), invoked against each request's raw variable map.
type variableParser struct {
	schema    *schema.Schema
	variables []compiledVariable
}

// compileVariableParser walks an operation's variable definitions once, resolving their declared
// types against the schema and rejecting invalid input types up front.
func compileVariableParser(s *schema.Schema, operation *ast.OperationDefinition) (*variableParser, *Error) {
	parser := &variableParser{schema: s}
	for _, def := range operation.VariableDefinitions {
		t := schemaTypeFromAST(def.Type, s)
		if t == nil || !t.IsInputType() {
			return nil, newError(KindCompilation, def.Type, "invalid variable type")
		}
		parser.variables = append(parser.variables, compiledVariable{
			Name:         def.Variable.Name.Name,
			Type:         t,
			DefaultValue: def.DefaultValue,
			Node:         def,
		})
	}
	return parser, nil
}

// Coerce runs the compiled routine against a request's raw variable values, returning either the
// coerced map or a non-empty error list.
func (p *variableParser) Coerce(raw map[string]interface{}) (map[string]interface{}, []*Error) {
	coerced := map[string]interface{}{}
	var errs []*Error

	for _, v := range p.variables {
		value, has := raw[v.Name]
		if !has {
			if v.DefaultValue != nil {
				dv, err := coerceLiteralForDefault(v.DefaultValue, v.Type, v.Name)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				coerced[v.Name] = dv
				continue
			}
			if schema.IsNonNullType(v.Type) {
				errs = append(errs, newError(KindVariableCoercion, v.Node, "the %v variable is required", v.Name))
				continue
			}
			continue
		}

		visited := map[interface{}]struct{}{}
		result, err := coerceVariableValueDetectingCycles(value, v.Type, v.Name, nil, visited)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		coerced[v.Name] = result
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return coerced, nil
}

func coerceLiteralForDefault(node ast.Value, t schema.Type, name string) (interface{}, *Error) {
	v, err := schema.CoerceLiteral(node, t, nil)
	if err != nil {
		return nil, newError(KindVariableCoercion, node, "invalid default value for $%v: %v", name, err.Error())
	}
	return v, nil
}

// coerceVariableValueDetectingCycles mirrors schema.CoerceVariableValue but maintains a set of
// visited object/list identities along the current coercion path so that a runtime-cyclic input
// object value terminates with a CIRCULAR_VARIABLE-style error instead of recursing forever.
func coerceVariableValueDetectingCycles(v interface{}, t schema.Type, name string, path []string, visited map[interface{}]struct{}) (interface{}, *Error) {
	if nn, ok := t.(*schema.NonNullType); ok {
		if v == nil {
			return nil, newError(KindVariableCoercion, nil, "the %v variable is required", name)
		}
		return coerceVariableValueDetectingCycles(v, nn.Type, name, path, visited)
	}
	if v == nil {
		return nil, nil
	}

	switch t := t.(type) {
	case *schema.InputObjectType:
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, newError(KindVariableCoercion, nil, "invalid $%v value: expected an object at %v", name, dottedPath(path))
		}
		identity := reflect.ValueOf(m).Pointer()
		if _, ok := visited[identity]; ok {
			return nil, newError(KindVariableCoercion, nil, "$%v contains a circular reference at %v", name, dottedPath(path))
		}
		visited[identity] = struct{}{}
		defer delete(visited, identity)

		result := map[string]interface{}{}
		for fieldName, fieldDef := range t.Fields {
			fv, has := m[fieldName]
			if !has {
				if fieldDef.DefaultValue != nil {
					if fieldDef.DefaultValue == schema.Null {
						result[fieldName] = nil
					} else {
						result[fieldName] = fieldDef.DefaultValue
					}
				} else if schema.IsNonNullType(fieldDef.Type) {
					return nil, newError(KindVariableCoercion, nil, "the %v field is required at %v", fieldName, dottedPath(path))
				}
				continue
			}
			coerced, err := coerceVariableValueDetectingCycles(fv, fieldDef.Type, name, append(path, fieldName), visited)
			if err != nil {
				return nil, err
			}
			result[fieldName] = coerced
		}
		for fieldName := range m {
			if _, ok := t.Fields[fieldName]; !ok {
				return nil, newError(KindVariableCoercion, nil, "unknown field: %v at %v", fieldName, dottedPath(path))
			}
		}
		if t.InputCoercion != nil {
			out, err := t.InputCoercion(result)
			if err != nil {
				return nil, newError(KindVariableCoercion, nil, "invalid $%v value: %v", name, err.Error())
			}
			return out, nil
		}
		return result, nil
	case *schema.ListType:
		if list, ok := v.([]interface{}); ok {
			identity := reflect.ValueOf(list).Pointer()
			if _, ok := visited[identity]; ok {
				return nil, newError(KindVariableCoercion, nil, "$%v contains a circular reference at %v", name, dottedPath(path))
			}
			visited[identity] = struct{}{}
			defer delete(visited, identity)

			result := make([]interface{}, len(list))
			for i, item := range list {
				coerced, err := coerceVariableValueDetectingCycles(item, t.Type, name, append(path, fmt.Sprintf("%d", i)), visited)
				if err != nil {
					return nil, err
				}
				result[i] = coerced
			}
			return result, nil
		}
		coerced, err := coerceVariableValueDetectingCycles(v, t.Type, name, path, visited)
		if err != nil {
			return nil, err
		}
		return []interface{}{coerced}, nil
	default:
		coerced, err := schema.CoerceVariableValue(v, t)
		if err != nil {
			return nil, newError(KindVariableCoercion, nil, "invalid $%v value: %v", name, err.Error())
		}
		return coerced, nil
	}
}

func dottedPath(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}
