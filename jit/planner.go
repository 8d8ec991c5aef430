package jit

import (
	"context"

	"github.com/lindenhill/gqljit/ast"
	"github.com/lindenhill/gqljit/schema"
)

// planner builds a planNode/nullabilityNode tree for a single operation, per spec.md §4.E: driven
// entirely by the AST walker, starting from the operation's root type and recursing into each
// response key's resolved field type exactly once.
type planner struct {
	schema    *schema.Schema
	fragments map[string]*ast.FragmentDefinition
	options   *CompileOptions
	collector *collector
}

// planOperation compiles operation's root selection set against rootType.
func (p *planner) planOperation(rootType *schema.ObjectType, operation *ast.OperationDefinition) (*ObjectPlan, *nullabilityNode, *Error) {
	return p.planObject(rootType, operation.SelectionSet.Selections, nil, nil)
}

// planObject collects fields for objectType at path and compiles each response key into a
// planField, recursing into each field's return type via planType.
func (p *planner) planObject(objectType *schema.ObjectType, selections []ast.Selection, path *Path, inherited predicate) (*ObjectPlan, *nullabilityNode, *Error) {
	fan, ferr := p.collector.collectFields(objectType, selections, path, inherited)
	if ferr != nil {
		return nil, nil, ferr
	}

	object := &ObjectPlan{TypeName: objectType.Name}
	node := newNullabilityNode(true)
	node.Children = map[string]*nullabilityNode{}

	for _, key := range fan.Keys() {
		fieldNodes := fan.Fields(key)
		first := fieldNodes[0]
		fieldPath := path.WithKey(key, PathKindLiteral)
		include := p.combinedInclude(fieldNodes, path)

		if first.Name.Name == "__typename" {
			object.Fields = append(object.Fields, &planField{
				ResponseKey:   key,
				ParentType:    objectType,
				FieldNodes:    fieldNodes,
				ShouldInclude: include,
				Body:          &ConstPlan{Value: objectType.Name},
				Path:          fieldPath,
			})
			node.Children[key] = newNullabilityNode(false)
			continue
		}

		fieldDef := objectType.Fields[first.Name.Name]
		if fieldDef == nil {
			return nil, nil, newError(KindCompilation, first, "the %v field does not exist on %v", first.Name.Name, objectType.Name)
		}

		args, aerr := coerceArgumentValues(first, fieldDef.Arguments, first.Arguments)
		if aerr != nil {
			return nil, nil, aerr
		}

		var childSelections []ast.Selection
		for _, fn := range fieldNodes {
			if fn.SelectionSet != nil {
				childSelections = append(childSelections, fn.SelectionSet.Selections...)
			}
		}

		body, childNode, berr := p.planType(fieldDef.Type, childSelections, fieldPath, nil, 0)
		if berr != nil {
			return nil, nil, berr
		}

		field := &planField{
			ResponseKey:   key,
			ParentType:    objectType,
			FieldDef:      fieldDef,
			FieldNodes:    fieldNodes,
			Args:          args,
			ShouldInclude: include,
			Body:          body,
			Path:          fieldPath,
		}
		field.Expansion = buildFieldExpansion(childNode, body, nil)
		object.Fields = append(object.Fields, field)
		node.Children[key] = childNode
	}

	return object, node, nil
}

// planType compiles t, recursing through any List/NonNull wrappers, down to a leaf, object, or
// abstract plan. depth counts the number of ListType layers crossed so far, informational only in
// this interpreter (list indices are attached to Paths directly at execution time rather than
// through a symbolic index variable).
func (p *planner) planType(t schema.Type, selections []ast.Selection, path *Path, inherited predicate, depth int) (planNode, *nullabilityNode, *Error) {
	if nn, ok := t.(*schema.NonNullType); ok {
		inner, node, err := p.planType(nn.Type, selections, path, inherited, depth)
		if err != nil {
			return nil, nil, err
		}
		node.IsNullable = false
		return &NonNullPlan{Inner: inner}, node, nil
	}

	if lt, ok := t.(*schema.ListType); ok {
		item, itemNode, err := p.planType(lt.Type, selections, path, inherited, depth+1)
		if err != nil {
			return nil, nil, err
		}
		node := newNullabilityNode(true)
		node.ListChild = itemNode
		return &ListPlan{Item: item, DepthIndex: depth}, node, nil
	}

	switch named := t.(type) {
	case *schema.ScalarType:
		ser := compileLeafSerializer(named, p.options.customSerializers(), p.options.disableLeafSerialization())
		return &LeafPlan{TypeName: named.Name, Serialize: ser}, newNullabilityNode(true), nil
	case *schema.EnumType:
		ser := compileLeafSerializer(named, p.options.customSerializers(), p.options.disableLeafSerialization())
		return &LeafPlan{TypeName: named.Name, Serialize: ser}, newNullabilityNode(true), nil
	case *schema.ObjectType:
		return p.planObject(named, selections, path, inherited)
	case *schema.InterfaceType:
		return p.planAbstract(named, named.ResolveType, selections, path, inherited)
	case *schema.UnionType:
		return p.planAbstract(named, named.ResolveType, selections, path, inherited)
	}

	return nil, nil, newError(KindCompilation, nil, "%v cannot be used as a field type", t)
}

// planAbstract precomputes one ObjectPlan branch per possible concrete type of an interface or
// union, per spec.md §4.E step 4. Branch-specific nullability children are merged into a single
// node since every branch maps into the same response shape for fields shared across possible
// types, and type-specific fields are only ever present in one branch.
func (p *planner) planAbstract(t schema.Type, resolveType func(interface{}) *schema.ObjectType, selections []ast.Selection, path *Path, inherited predicate) (planNode, *nullabilityNode, *Error) {
	possibles := p.schema.PossibleTypes(t)
	ap := &AbstractPlan{
		TypeName:    schema.UnwrappedType(t).NamedType(),
		Branches:    map[string]planNode{},
		ResolveType: makeResolveType(resolveType, possibles),
	}
	node := newNullabilityNode(true)
	node.Children = map[string]*nullabilityNode{}

	for _, possible := range possibles {
		branchPath := path.WithKey(possible.Name, PathKindMeta)
		branch, branchNode, err := p.planObject(possible, selections, branchPath, inherited)
		if err != nil {
			return nil, nil, err
		}
		ap.Branches[possible.Name] = branch
		for k, v := range branchNode.Children {
			if _, ok := node.Children[k]; !ok {
				node.Children[k] = v
			}
		}
	}

	return ap, node, nil
}

// makeResolveType builds the runtime type-resolution function for an abstract plan. The type's own
// ResolveType, if given, decides alone. Otherwise a map value's "__typename" entry naming one of
// the possible types is used, and failing that each possible type's IsTypeOf is probed.
func makeResolveType(explicit func(interface{}) *schema.ObjectType, possibles []*schema.ObjectType) func(interface{}, context.Context) (*schema.ObjectType, error) {
	return func(value interface{}, _ context.Context) (*schema.ObjectType, error) {
		if explicit != nil {
			return explicit(value), nil
		}
		if m, ok := value.(map[string]interface{}); ok {
			if name, ok := m["__typename"].(string); ok {
				for _, obj := range possibles {
					if obj.Name == name {
						return obj, nil
					}
				}
			}
		}
		for _, obj := range possibles {
			if obj.IsTypeOf != nil && obj.IsTypeOf(value) {
				return obj, nil
			}
		}
		return nil, nil
	}
}

// combinedInclude ORs together the shouldInclude predicates recorded for every *ast.Field that
// contributed to a response key: the key is reachable if any contributing occurrence's conditions
// hold.
func (p *planner) combinedInclude(fieldNodes []*ast.Field, path *Path) predicate {
	preds := make([]predicate, len(fieldNodes))
	for i, fn := range fieldNodes {
		preds[i] = p.collector.shouldIncludeFor(fn, path)
	}
	return orPredicates(preds...)
}

// buildFieldExpansion mirrors a compiled plan subtree into the FieldExpansion shape exposed to
// resolvers through ResolveInfo.Enriched["fieldExpansion"], per spec.md §4.H. shouldInclude is the
// predicate gating the field THIS expansion describes (nil for the root call, since a field's own
// top-level expansion isn't itself a gated entry in some parent's map); every sub-entry built while
// recursing into an ObjectPlan/AbstractPlan's fields carries that field's own planField.ShouldInclude
// so callers can tell which subfields are conditionally requested. Aliased fields and __typename are
// omitted from the expansion entirely, per spec.md §4.H.
func buildFieldExpansion(node *nullabilityNode, body planNode, shouldInclude predicate) *FieldExpansion {
	switch b := body.(type) {
	case *NonNullPlan:
		return buildFieldExpansion(node, b.Inner, shouldInclude)
	case *ListPlan:
		return buildFieldExpansion(node.ListChild, b.Item, shouldInclude)
	case *ObjectPlan:
		sub := map[string]*FieldExpansion{}
		for _, f := range b.Fields {
			if f.FieldDef == nil {
				continue // __typename: not a real field, omitted from the expansion
			}
			if len(f.FieldNodes) > 0 && f.FieldNodes[0].Alias != nil {
				continue // aliased fields are omitted from the expansion
			}
			sub[f.ResponseKey] = buildFieldExpansion(node.Children[f.ResponseKey], f.Body, f.ShouldInclude)
		}
		return &FieldExpansion{
			ByPossibleType: map[string]map[string]*FieldExpansion{b.TypeName: sub},
			ShouldInclude:  shouldInclude,
		}
	case *AbstractPlan:
		byType := map[string]map[string]*FieldExpansion{}
		for _, branch := range b.Branches {
			be := buildFieldExpansion(node, branch, shouldInclude)
			for tn, m := range be.ByPossibleType {
				byType[tn] = m
			}
		}
		return &FieldExpansion{ByPossibleType: byType, ShouldInclude: shouldInclude}
	default:
		// A leaf (scalar/enum) field: no further expansion, but its own shouldInclude predicate is
		// still meaningful to a caller deciding which subfields will be requested.
		return &FieldExpansion{ShouldInclude: shouldInclude}
	}
}
