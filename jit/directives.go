package jit

import (
	"github.com/lindenhill/gqljit/ast"
	"github.com/lindenhill/gqljit/schema"
)

// predicate is a compiled shouldInclude expression: a closure over the coerced runtime variables,
// built once at plan-compile time and invoked once per request per reachable path.
type predicate func(variables map[string]interface{}) bool

func alwaysTrue(map[string]interface{}) bool { return true }

// andPredicates returns the logical conjunction of ps, dropping any nil/always-true entries to
// avoid combinatorial blow-up per spec invariant 5.
func andPredicates(ps ...predicate) predicate {
	var kept []predicate
	for _, p := range ps {
		if p != nil {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	if len(kept) == 1 {
		return kept[0]
	}
	return func(variables map[string]interface{}) bool {
		for _, p := range kept {
			if !p(variables) {
				return false
			}
		}
		return true
	}
}

// variableTypeInfo is the slice of a compiled variable's declaration that directive compilation
// needs to validate an @skip/@include "if" variable reference, mirroring compiledVariable's Type
// and whether a default value was declared.
type variableTypeInfo struct {
	Type       schema.Type
	HasDefault bool
}

// compileSelectionPredicate compiles the @skip/@include predicate for a single selection's
// directive list. Returns nil (meaning "always true") if neither directive is present.
func compileSelectionPredicate(s *schema.Schema, variableTypes map[string]variableTypeInfo, directives []*ast.Directive) (predicate, *Error) {
	var skip, include predicate
	var skipPresent, includePresent bool

	for _, d := range directives {
		switch d.Name.Name {
		case "skip":
			p, err := compileIfPredicate(s, variableTypes, d)
			if err != nil {
				return nil, err
			}
			skip = p
			skipPresent = true
		case "include":
			p, err := compileIfPredicate(s, variableTypes, d)
			if err != nil {
				return nil, err
			}
			include = p
			includePresent = true
		}
	}

	switch {
	case skipPresent && includePresent:
		return andPredicates(negate(skip), include), nil
	case skipPresent:
		return negate(skip), nil
	case includePresent:
		return include, nil
	default:
		return nil, nil
	}
}

// orPredicates returns the logical disjunction of ps. If any entry is nil (always-true), the whole
// disjunction is always-true.
func orPredicates(ps ...predicate) predicate {
	var kept []predicate
	for _, p := range ps {
		if p == nil {
			return nil
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return nil
	}
	if len(kept) == 1 {
		return kept[0]
	}
	return func(variables map[string]interface{}) bool {
		for _, p := range kept {
			if p(variables) {
				return true
			}
		}
		return false
	}
}

func negate(p predicate) predicate {
	if p == nil {
		return nil
	}
	return func(variables map[string]interface{}) bool {
		return !p(variables)
	}
}

func compileIfPredicate(s *schema.Schema, variableTypes map[string]variableTypeInfo, d *ast.Directive) (predicate, *Error) {
	var ifArg *ast.Argument
	for _, a := range d.Arguments {
		if a.Name.Name == "if" {
			ifArg = a
			break
		}
	}
	if ifArg == nil {
		return nil, newError(KindCompilation, d, "the @%v directive requires an if argument", d.Name.Name)
	}

	switch v := ifArg.Value.(type) {
	case *ast.BooleanValue:
		value := v.Value
		return func(map[string]interface{}) bool { return value }, nil
	case *ast.Variable:
		name := v.Name.Name
		info, ok := variableTypes[name]
		if !ok {
			return nil, newError(KindCompilation, v, "the if argument to @%v references undefined variable $%v", d.Name.Name, name)
		}
		if !isBooleanIfVariable(info) {
			return nil, newError(KindCompilation, v, "the if argument to @%v must be a Boolean! variable, or a Boolean variable with a default value (INVALID_VARIABLE_USAGE)", d.Name.Name)
		}
		return func(variables map[string]interface{}) bool {
			b, _ := variables[name].(bool)
			return b
		}, nil
	default:
		return nil, newError(KindCompilation, ifArg.Value, "the if argument to @%v must be a boolean or variable", d.Name.Name)
	}
}

// isBooleanIfVariable reports whether a variable's declared type is an acceptable @skip/@include
// "if" argument: non-null Boolean, or nullable Boolean with a default value making it always
// resolve to a concrete bool.
func isBooleanIfVariable(info variableTypeInfo) bool {
	if nn, ok := info.Type.(*schema.NonNullType); ok {
		return nn.Type == schema.BooleanType
	}
	return info.Type == schema.BooleanType && info.HasDefault
}
