package schema

import "fmt"

type UnionType struct {
	Name        string
	Description string
	Directives  []*Directive
	MemberTypes []*ObjectType

	// ResolveType, if given, determines the concrete object type of a resolved value directly,
	// without falling back to probing each member's IsTypeOf.
	ResolveType func(interface{}) *ObjectType
}

func (d *UnionType) String() string {
	return d.Name
}

func (d *UnionType) IsInputType() bool {
	return false
}

func (d *UnionType) IsOutputType() bool {
	return true
}

func (d *UnionType) IsSubTypeOf(other Type) bool {
	return d.IsSameType(other)
}

func (d *UnionType) IsSameType(other Type) bool {
	return d == other
}

func (d *UnionType) NamedType() string {
	return d.Name
}

func (d *UnionType) shallowValidate() error {
	if len(d.MemberTypes) == 0 {
		return fmt.Errorf("%v must have at least one member type", d.Name)
	}
	objNames := map[string]struct{}{}
	for _, member := range d.MemberTypes {
		if _, ok := objNames[member.Name]; ok {
			return fmt.Errorf("union member types must be unique")
		}
		if d.ResolveType == nil && member.IsTypeOf == nil {
			return fmt.Errorf("union member types must define IsTypeOf unless the union defines ResolveType")
		}
		objNames[member.Name] = struct{}{}
	}
	return nil
}
