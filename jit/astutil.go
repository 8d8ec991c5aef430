package jit

import (
	"fmt"

	"github.com/lindenhill/gqljit/ast"
	"github.com/lindenhill/gqljit/schema"
)

// schemaTypeFromAST resolves an ast.Type reference against the schema, applying list/non-null
// wrapping. It returns nil if the named type does not exist in the schema.
func schemaTypeFromAST(t ast.Type, s *schema.Schema) schema.Type {
	switch t := t.(type) {
	case *ast.ListType:
		if inner := schemaTypeFromAST(t.Type, s); inner != nil {
			return schema.NewListType(inner)
		}
	case *ast.NonNullType:
		if inner := schemaTypeFromAST(t.Type, s); inner != nil {
			return schema.NewNonNullType(inner)
		}
	case *ast.NamedType:
		if named := s.NamedType(t.Name.Name); named != nil {
			return named
		}
		return nil
	default:
		panic(fmt.Sprintf("unexpected ast type: %T", t))
	}
	return nil
}

// doesFragmentTypeApply reports whether runtimeType satisfies the given fragment type condition.
func doesFragmentTypeApply(runtimeType *schema.ObjectType, fragmentType schema.Type) bool {
	switch fragmentType := fragmentType.(type) {
	case *schema.ObjectType:
		return runtimeType.IsSameType(fragmentType)
	case *schema.InterfaceType:
		for _, impl := range runtimeType.ImplementedInterfaces {
			if impl.IsSameType(fragmentType) {
				return true
			}
		}
		return false
	case *schema.UnionType:
		for _, member := range fragmentType.MemberTypes {
			if member.IsSameType(runtimeType) {
				return true
			}
		}
		return false
	}
	return false
}

func responseKeyFor(field *ast.Field) string {
	if field.Alias != nil {
		return field.Alias.Name
	}
	return field.Name.Name
}
