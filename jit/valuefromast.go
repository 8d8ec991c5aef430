package jit

import (
	"github.com/lindenhill/gqljit/ast"
	"github.com/lindenhill/gqljit/schema"
)

// MissingVariable records a variable reference found while coercing a literal argument value. The
// engine resolves these at request time by writing the variable's coerced value into the indicated
// sub-path of the pre-built static value.
type MissingVariable struct {
	Name string
	Path []interface{}
	Type schema.Type
}

// Arguments is the compile-time result of coercing a field's or directive's argument literals: a
// static value tree with placeholders at every position a variable occupied, plus the list of those
// placeholders.
type Arguments struct {
	Values  map[string]interface{}
	Missing []MissingVariable
}

// coerceArgumentValues statically coerces the literal portions of arguments against their
// definitions, recording variable references as MissingVariable entries rather than resolving them.
func coerceArgumentValues(node ast.Node, defs map[string]*schema.InputValueDefinition, args []*ast.Argument) (*Arguments, *Error) {
	provided := map[string]ast.Value{}
	for _, a := range args {
		provided[a.Name.Name] = a.Value
	}

	ret := &Arguments{Values: map[string]interface{}{}}

	for name, def := range defs {
		valueNode, has := provided[name]
		if !has {
			if def.DefaultValue != nil {
				if def.DefaultValue == schema.Null {
					ret.Values[name] = nil
				} else {
					ret.Values[name] = def.DefaultValue
				}
			} else if schema.IsNonNullType(def.Type) {
				return nil, newError(KindCompilation, node, "the %v argument is required", name)
			}
			continue
		}

		coerced, missing, err := valueFromAST(valueNode, def.Type, []interface{}{name}, &ret.Missing)
		if err != nil {
			return nil, err
		}
		if missing {
			continue
		}
		ret.Values[name] = coerced
	}

	for name := range provided {
		if _, ok := defs[name]; !ok {
			return nil, newError(KindCompilation, node, "unknown argument: %v", name)
		}
	}

	return ret, nil
}

// valueFromAST coerces a single literal value node against its expected type. If the node (or a
// nested position within it) is a variable reference, that reference is appended to *missingOut
// and the second return value reports whether the top-level call itself resolved to a bare
// variable (in which case the caller should leave the slot unset rather than store a nil).
func valueFromAST(node ast.Value, t schema.Type, path []interface{}, missingOut *[]MissingVariable) (interface{}, bool, *Error) {
	if variable, ok := node.(*ast.Variable); ok {
		p := make([]interface{}, len(path))
		copy(p, path)
		*missingOut = append(*missingOut, MissingVariable{Name: variable.Name.Name, Path: p, Type: t})
		return nil, true, nil
	}

	if nn, ok := t.(*schema.NonNullType); ok {
		if ast.IsNullValue(node) {
			return nil, false, newError(KindCompilation, node, "value is required")
		}
		v, missing, err := valueFromAST(node, nn.Type, path, missingOut)
		return v, missing, err
	}

	if ast.IsNullValue(node) {
		return nil, false, nil
	}

	switch t := t.(type) {
	case *schema.ScalarType:
		v, ok := t.ParseLiteral(node)
		if !ok {
			return nil, false, newError(KindCompilation, node, "invalid literal for %v", t.Name)
		}
		return v, false, nil
	case *schema.EnumType:
		ev, ok := node.(*ast.EnumValue)
		if !ok {
			return nil, false, newError(KindCompilation, node, "invalid literal for %v", t.Name)
		}
		if _, ok := t.Values[ev.Value]; !ok {
			return nil, false, newError(KindCompilation, node, "%v is not a valid value for %v", ev.Value, t.Name)
		}
		return ev.Value, false, nil
	case *schema.ListType:
		if list, ok := node.(*ast.ListValue); ok {
			result := make([]interface{}, len(list.Values))
			for i, item := range list.Values {
				v, missing, err := valueFromAST(item, t.Type, append(append([]interface{}{}, path...), i), missingOut)
				if err != nil {
					return nil, false, err
				}
				if !missing {
					result[i] = v
				}
			}
			return result, false, nil
		}
		v, missing, err := valueFromAST(node, t.Type, path, missingOut)
		if err != nil {
			return nil, false, err
		}
		if missing {
			return nil, false, nil
		}
		return []interface{}{v}, false, nil
	case *schema.InputObjectType:
		obj, ok := node.(*ast.ObjectValue)
		if !ok {
			return nil, false, newError(KindCompilation, node, "invalid literal for %v", t.Name)
		}
		provided := map[string]ast.Value{}
		for _, f := range obj.Fields {
			provided[f.Name.Name] = f.Value
		}
		result := map[string]interface{}{}
		for name, def := range t.Fields {
			valueNode, has := provided[name]
			if !has {
				if def.DefaultValue != nil {
					if def.DefaultValue == schema.Null {
						result[name] = nil
					} else {
						result[name] = def.DefaultValue
					}
				} else if schema.IsNonNullType(def.Type) {
					return nil, false, newError(KindCompilation, node, "the %v field is required", name)
				}
				continue
			}
			v, missing, err := valueFromAST(valueNode, def.Type, append(append([]interface{}{}, path...), name), missingOut)
			if err != nil {
				return nil, false, err
			}
			if !missing {
				result[name] = v
			}
		}
		for name := range provided {
			if _, ok := t.Fields[name]; !ok {
				return nil, false, newError(KindCompilation, node, "unknown field: %v", name)
			}
		}
		return result, false, nil
	}

	return nil, false, newError(KindCompilation, node, "%v cannot be used as an input type", t)
}
