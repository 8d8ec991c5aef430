package jit

import (
	"context"

	"github.com/lindenhill/gqljit/ast"
	"github.com/lindenhill/gqljit/schema"
)

// ResolveInfo is passed to every resolver invocation, matching spec.md §6's info contract.
type ResolveInfo struct {
	FieldName      string
	FieldNodes     []*ast.Field
	ReturnType     schema.Type
	ParentType     *schema.ObjectType
	Schema         *schema.Schema
	Fragments      map[string]*ast.FragmentDefinition
	Operation      *ast.OperationDefinition
	RootValue      interface{}
	VariableValues map[string]interface{}
	Path           *Path

	Context context.Context

	// Enriched carries whatever a ResolverInfoEnricher contributed, if one was configured, plus
	// the engine's own "fieldExpansion" entry.
	Enriched map[string]interface{}
}

// ResolverInfoEnricher extends the mandatory ResolveInfo fields with additional, resolver-specific
// data. Its returned keys may not shadow the mandatory fields.
type ResolverInfoEnricher func(*ResolveInfo) (map[string]interface{}, error)

var mandatoryInfoKeys = map[string]bool{
	"fieldName": true, "fieldNodes": true, "returnType": true, "parentType": true,
	"schema": true, "fragments": true, "operation": true, "rootValue": true,
	"variableValues": true, "path": true,
}

// FieldExpansion describes, per possible concrete type, the subfields a resolver's caller will go
// on to request. A leaf subfield's entry has a nil/empty ByPossibleType (there is nothing further
// to expand) but still carries its own ShouldInclude. Aliased fields and __typename are omitted
// from ByPossibleType entirely, since a resolver reasons about expansion in terms of schema field
// names, not response keys.
type FieldExpansion struct {
	ByPossibleType map[string]map[string]*FieldExpansion
	ShouldInclude  func(variables map[string]interface{}) bool
}

type infoContextKey struct{}

// withInfo attaches info to ctx so that a schema.FieldContext-shaped resolver can recover it via
// InfoFromContext, bridging the engine's richer per-field info into the teacher's FieldContext
// resolver contract without schema importing jit (which would cycle).
func withInfo(ctx context.Context, info *ResolveInfo) context.Context {
	return context.WithValue(ctx, infoContextKey{}, info)
}

// InfoFromContext recovers the ResolveInfo a resolver is currently running under, or nil if none
// was attached (e.g. when called outside of field resolution).
func InfoFromContext(ctx context.Context) *ResolveInfo {
	info, _ := ctx.Value(infoContextKey{}).(*ResolveInfo)
	return info
}
