package jit

import (
	"github.com/lindenhill/gqljit/ast"
	"github.com/lindenhill/gqljit/schema"
)

// fieldDecoration is the "JitFieldNode" of spec.md §3: a decoration of a source field AST node
// carrying a per-reaching-path shouldInclude predicate. The same *ast.Field pointer can be
// decorated from more than one collection call (it is reused whenever it is reached through more
// than one fragment-spread chain at the same response path), so decorations accumulate by
// conjunction rather than being overwritten.
type fieldDecoration struct {
	shouldIncludePath map[string]predicate
}

// FieldsAndNodes preserves insertion order of response keys, mapping each to every *ast.Field that
// contributed to it.
type FieldsAndNodes struct {
	keys  []string
	nodes map[string][]*ast.Field
}

func newFieldsAndNodes() *FieldsAndNodes {
	return &FieldsAndNodes{nodes: map[string][]*ast.Field{}}
}

func (f *FieldsAndNodes) append(key string, field *ast.Field) {
	if _, ok := f.nodes[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.nodes[key] = append(f.nodes[key], field)
}

func (f *FieldsAndNodes) Keys() []string { return f.keys }

func (f *FieldsAndNodes) Fields(key string) []*ast.Field { return f.nodes[key] }

type collector struct {
	schema        *schema.Schema
	fragments     map[string]*ast.FragmentDefinition
	decorations   map[*ast.Field]*fieldDecoration
	variableTypes map[string]variableTypeInfo
}

// collectFields expands selections against runtimeType into a FieldsAndNodes, compiling and
// conjoining skip/include predicates along the way. path is the response path at which selections
// is reached (used as the key under which per-field predicates are recorded).
func (c *collector) collectFields(runtimeType *schema.ObjectType, selections []ast.Selection, path *Path, inherited predicate) (*FieldsAndNodes, *Error) {
	acc := newFieldsAndNodes()
	if err := c.collectFieldsImpl(runtimeType, selections, path, inherited, map[string]struct{}{}, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// collectFieldsImpl recurses into each fragment spread/inline fragment in place, exactly where it
// occurs among its siblings, so acc's key order always matches the document's own selection order
// (spec invariant 2) — grounded on the teacher's collectFieldsImpl, which recurses rather than
// queuing fragment bodies for later.
func (c *collector) collectFieldsImpl(runtimeType *schema.ObjectType, selections []ast.Selection, path *Path, inherited predicate, visitedFragments map[string]struct{}, acc *FieldsAndNodes) *Error {
	for _, selection := range selections {
		switch selection := selection.(type) {
		case *ast.Field:
			ownPredicate, err := compileSelectionPredicate(c.schema, c.variableTypes, selection.Directives)
			if err != nil {
				return err
			}
			combined := andPredicates(inherited, ownPredicate)

			dec, ok := c.decorations[selection]
			if !ok {
				dec = &fieldDecoration{shouldIncludePath: map[string]predicate{}}
				c.decorations[selection] = dec
			}
			key := path.SkipIncludeKey()
			dec.shouldIncludePath[key] = andPredicates(dec.shouldIncludePath[key], combined)

			acc.append(responseKeyFor(selection), selection)
		case *ast.FragmentSpread:
			name := selection.FragmentName.Name
			if _, ok := visitedFragments[name]; ok {
				continue
			}
			visitedFragments[name] = struct{}{}

			fragment := c.fragments[name]
			if fragment == nil {
				return newError(KindCompilation, selection, "undefined fragment: %v", name)
			}
			fragmentType := schemaTypeFromAST(fragment.TypeCondition, c.schema)
			if fragmentType == nil {
				return newError(KindCompilation, selection, "fragment %v's type condition is not present in the schema", name)
			}
			if !doesFragmentTypeApply(runtimeType, fragmentType) {
				continue
			}
			fragPredicate, err := compileSelectionPredicate(c.schema, c.variableTypes, selection.Directives)
			if err != nil {
				return err
			}
			if err := c.collectFieldsImpl(runtimeType, fragment.SelectionSet.Selections, path, andPredicates(inherited, fragPredicate), visitedFragments, acc); err != nil {
				return err
			}
		case *ast.InlineFragment:
			if selection.TypeCondition != nil {
				fragmentType := schemaTypeFromAST(selection.TypeCondition, c.schema)
				if fragmentType == nil {
					return newError(KindCompilation, selection, "inline fragment's type condition is not present in the schema")
				}
				if !doesFragmentTypeApply(runtimeType, fragmentType) {
					continue
				}
			}
			fragPredicate, err := compileSelectionPredicate(c.schema, c.variableTypes, selection.Directives)
			if err != nil {
				return err
			}
			if err := c.collectFieldsImpl(runtimeType, selection.SelectionSet.Selections, path, andPredicates(inherited, fragPredicate), visitedFragments, acc); err != nil {
				return err
			}
		}
	}
	return nil
}

// shouldIncludeFor returns the compiled predicate recorded for field at path, defaulting to
// always-true if none was recorded (spec invariant 5).
func (c *collector) shouldIncludeFor(field *ast.Field, path *Path) predicate {
	dec, ok := c.decorations[field]
	if !ok {
		return alwaysTrue
	}
	p, ok := dec.shouldIncludePath[path.SkipIncludeKey()]
	if !ok || p == nil {
		return alwaysTrue
	}
	return p
}
