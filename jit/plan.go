package jit

import (
	"context"

	"github.com/lindenhill/gqljit/ast"
	"github.com/lindenhill/gqljit/schema"
)

// planNode is the closed sum type of spec.md §3's Plan structure: every field encountered in the
// expanded document maps to exactly one of LeafPlan, ConstPlan, ObjectPlan, AbstractPlan, ListPlan,
// or NonNullPlan. Representing it as an interface with six concrete implementations gives the
// dispatcher in jit/engine.go a plain type switch instead of a v-table per node.
type planNode interface {
	isPlanNode()
}

// LeafPlan serializes a resolved scalar or enum value.
type LeafPlan struct {
	TypeName  string
	Serialize leafSerializer
}

func (*LeafPlan) isPlanNode() {}

// ConstPlan emits a compile-time-known value without invoking a resolver (used for __typename).
type ConstPlan struct {
	Value interface{}
}

func (*ConstPlan) isPlanNode() {}

// planField is one field of an ObjectPlan.
type planField struct {
	ResponseKey   string
	ParentType    *schema.ObjectType
	FieldDef      *schema.FieldDefinition
	FieldNodes    []*ast.Field
	Args          *Arguments
	ShouldInclude predicate
	Body          planNode
	Path          *Path
	Expansion     *FieldExpansion
}

// ObjectPlan allocates an output object and fills it field by field.
type ObjectPlan struct {
	TypeName string
	Fields   []*planField
}

func (*ObjectPlan) isPlanNode() {}

// AbstractPlan dispatches to one of several concrete-type branches based on a runtime type
// resolution.
type AbstractPlan struct {
	TypeName    string
	Branches    map[string]planNode
	ResolveType func(value interface{}, ctx context.Context) (*schema.ObjectType, error)
}

func (*AbstractPlan) isPlanNode() {}

// ListPlan maps a plan over each element of a resolved list value.
type ListPlan struct {
	Item       planNode
	DepthIndex int
}

func (*ListPlan) isPlanNode() {}

// NonNullPlan wraps any other plan node, recording that a null or error produced here must bubble
// to the nearest nullable ancestor.
type NonNullPlan struct {
	Inner planNode
}

func (*NonNullPlan) isPlanNode() {}
