package schema

import (
	"fmt"
	"regexp"
	"strings"
)

// Schema is the immutable type-system object model the compiler is built against. It is assumed to
// have already been constructed and validated by the caller; building and validating schemas from
// SDL text is outside this package's concerns.
type Schema struct {
	directiveDefinitions     map[string]*DirectiveDefinition
	namedTypes               map[string]NamedType
	interfaceImplementations map[string][]*ObjectType
	possibleTypes            map[string][]*ObjectType

	query        *ObjectType
	mutation     *ObjectType
	subscription *ObjectType
}

func (s *Schema) QueryType() *ObjectType {
	return s.query
}

func (s *Schema) MutationType() *ObjectType {
	return s.mutation
}

func (s *Schema) SubscriptionType() *ObjectType {
	return s.subscription
}

func (s *Schema) DirectiveDefinition(name string) *DirectiveDefinition {
	return s.directiveDefinitions[name]
}

func (s *Schema) NamedType(name string) NamedType {
	return s.namedTypes[name]
}

func (s *Schema) NamedTypes() map[string]NamedType {
	return s.namedTypes
}

func (s *Schema) InterfaceImplementations(name string) []*ObjectType {
	return s.interfaceImplementations[name]
}

// PossibleTypes returns the concrete object types that can satisfy the given abstract type
// (interface or union). The planner precomputes abstract-type branches from this set.
func (s *Schema) PossibleTypes(t Type) []*ObjectType {
	switch t := t.(type) {
	case *InterfaceType:
		return s.interfaceImplementations[t.Name]
	case *UnionType:
		return t.MemberTypes
	}
	return nil
}

// DoTypesOverlap reports whether the two output types share at least one possible concrete type.
func (s *Schema) DoTypesOverlap(a, b Type) bool {
	if a.IsSameType(b) {
		return true
	}
	aObj, aIsObj := a.(*ObjectType)
	bObj, bIsObj := b.(*ObjectType)
	if aIsObj && bIsObj {
		return aObj == bObj
	}
	aPossible := s.possibleTypesOf(a)
	bPossible := s.possibleTypesOf(b)
	for _, pa := range aPossible {
		for _, pb := range bPossible {
			if pa == pb {
				return true
			}
		}
	}
	return false
}

func (s *Schema) possibleTypesOf(t Type) []*ObjectType {
	if obj, ok := t.(*ObjectType); ok {
		return []*ObjectType{obj}
	}
	return s.PossibleTypes(t)
}

var nameRegex = regexp.MustCompile(`^[_A-Za-z][_0-9A-Za-z]*$`)

func isName(s string) bool {
	return nameRegex.MatchString(s)
}

// New validates a schema definition and builds an immutable Schema from it.
func New(def *SchemaDefinition) (*Schema, error) {
	var err error
	schema := &Schema{
		directiveDefinitions:     def.DirectiveDefinitions,
		namedTypes:               map[string]NamedType{},
		interfaceImplementations: map[string][]*ObjectType{},
		query:                    def.Query,
		mutation:                 def.Mutation,
		subscription:             def.Subscription,
	}

	if schema.query == nil {
		return nil, fmt.Errorf("schemas must define the query operation")
	}

	for name := range def.DirectiveDefinitions {
		if !isName(name) || strings.HasPrefix(name, "__") {
			return nil, fmt.Errorf("illegal directive name: %v", name)
		}
	}

	Inspect(def, func(node interface{}) bool {
		if err != nil {
			return false
		}

		if namedType, ok := node.(NamedType); ok {
			if name := namedType.NamedType(); !isName(name) || strings.HasPrefix(name, "__") {
				err = fmt.Errorf("illegal type name: %v", name)
			} else if existing, ok := schema.namedTypes[name]; ok && existing != namedType {
				err = fmt.Errorf("multiple definitions for named type: %v", name)
			} else if builtin, ok := BuiltInTypes[name]; ok && namedType != builtin {
				err = fmt.Errorf("%v builtin may not be overridden", name)
			} else if existing != nil {
				// already visited
				return false
			} else {
				schema.namedTypes[name] = namedType
			}
		}

		if obj, ok := node.(*ObjectType); ok {
			for _, iface := range obj.ImplementedInterfaces {
				schema.interfaceImplementations[iface.Name] = append(schema.interfaceImplementations[iface.Name], obj)
			}
		}

		if err == nil {
			if n, ok := node.(interface {
				shallowValidate() error
			}); ok {
				err = n.shallowValidate()
			}
		}

		return err == nil
	})

	if err != nil {
		return nil, err
	}
	for name, scalar := range BuiltInTypes {
		if _, ok := schema.namedTypes[name]; !ok {
			schema.namedTypes[name] = scalar
		}
	}
	return schema, nil
}

// SchemaDefinition describes the types and root operations a Schema should be built from.
type SchemaDefinition struct {
	Directives           []*Directive
	DirectiveDefinitions map[string]*DirectiveDefinition

	Query        *ObjectType
	Mutation     *ObjectType
	Subscription *ObjectType

	// AdditionalTypes is used to add otherwise unreferenced types to the schema.
	AdditionalTypes []NamedType
}

type Argument struct {
	Name  string
	Value interface{}
}

// Type is implemented by every member of the GraphQL type system: scalars, enums, object,
// interface, union and input object types, plus the List and NonNull wrapper types.
type Type interface {
	String() string
	IsInputType() bool
	IsOutputType() bool
	IsSubTypeOf(Type) bool
	IsSameType(Type) bool
}

// NamedType is any type with an intrinsic schema name, i.e. anything other than a List or NonNull
// wrapper.
type NamedType interface {
	Type
	NamedType() string
}

// WrappedType is implemented by the List and NonNull type modifiers.
type WrappedType interface {
	Type
	Unwrap() Type
}

// UnwrappedType strips every List/NonNull wrapper from t and returns the underlying named type.
func UnwrappedType(t Type) NamedType {
	for {
		if wrapped, ok := t.(WrappedType); ok {
			t = wrapped.Unwrap()
		} else {
			break
		}
	}
	if t != nil {
		return t.(NamedType)
	}
	return nil
}
