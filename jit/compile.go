package jit

import (
	"context"

	"github.com/lindenhill/gqljit/ast"
	"github.com/lindenhill/gqljit/jit/internal/future"
	"github.com/lindenhill/gqljit/schema"
)

// CompiledQuery is the immutable output of Compile: a plan plus the dependency tables (variable
// parser, nullability map, fragment/operation references) needed to execute it many times against
// different root values and variables without re-walking the document.
type CompiledQuery struct {
	schema      *schema.Schema
	operation   *ast.OperationDefinition
	fragments   map[string]*ast.FragmentDefinition
	plan        *ObjectPlan
	nullability *nullabilityNode
	variables   *variableParser
	options     *CompileOptions
	serial      bool
}

// IsMutation reports whether this compiled query's root fields execute under the serial executor.
func (q *CompiledQuery) IsMutation() bool {
	return q.serial
}

// Compile builds a CompiledQuery for operationName out of document (or the document's sole
// operation, if operationName is empty and there is exactly one operation). Compilation fails fast
// with a non-empty error list and a nil CompiledQuery; it never returns a partially built plan.
func Compile(s *schema.Schema, document *ast.Document, operationName string, options *CompileOptions) (*CompiledQuery, []*Error) {
	operation, fragments, serr := selectOperation(document, operationName)
	if serr != nil {
		return nil, []*Error{serr}
	}

	rootType, serial, rerr := rootTypeFor(s, operation)
	if rerr != nil {
		return nil, []*Error{rerr}
	}

	varParser, verr := compileVariableParser(s, operation)
	if verr != nil {
		return nil, []*Error{verr}
	}

	variableTypes := map[string]variableTypeInfo{}
	for _, v := range varParser.variables {
		variableTypes[v.Name] = variableTypeInfo{Type: v.Type, HasDefault: v.DefaultValue != nil}
	}

	p := &planner{
		schema:    s,
		fragments: fragments,
		options:   options,
		collector: &collector{schema: s, fragments: fragments, decorations: map[*ast.Field]*fieldDecoration{}, variableTypes: variableTypes},
	}
	plan, nullability, perr := p.planOperation(rootType, operation)
	if perr != nil {
		return nil, []*Error{perr}
	}

	return &CompiledQuery{
		schema:      s,
		operation:   operation,
		fragments:   fragments,
		plan:        plan,
		nullability: nullability,
		variables:   varParser,
		options:     options,
		serial:      serial,
	}, nil
}

func selectOperation(document *ast.Document, operationName string) (*ast.OperationDefinition, map[string]*ast.FragmentDefinition, *Error) {
	fragments := map[string]*ast.FragmentDefinition{}
	var operations []*ast.OperationDefinition
	for _, def := range document.Definitions {
		switch def := def.(type) {
		case *ast.OperationDefinition:
			operations = append(operations, def)
		case *ast.FragmentDefinition:
			fragments[def.Name.Name] = def
		}
	}

	if operationName == "" {
		if len(operations) == 0 {
			return nil, nil, newError(KindCompilation, document, "the document contains no operations")
		}
		if len(operations) != 1 {
			return nil, nil, newError(KindCompilation, document, "an operation name is required when a document contains more than one operation")
		}
		return operations[0], fragments, nil
	}

	for _, op := range operations {
		if op.Name != nil && op.Name.Name == operationName {
			return op, fragments, nil
		}
	}
	return nil, nil, newError(KindCompilation, document, "unknown operation: %v", operationName)
}

func rootTypeFor(s *schema.Schema, operation *ast.OperationDefinition) (*schema.ObjectType, bool, *Error) {
	opType := "query"
	if operation.OperationType != nil {
		opType = operation.OperationType.Value
	}
	switch opType {
	case "query":
		if s.QueryType() == nil {
			return nil, false, newError(KindCompilation, operation, "the schema does not define a query type")
		}
		return s.QueryType(), false, nil
	case "mutation":
		if s.MutationType() == nil {
			return nil, false, newError(KindCompilation, operation, "the schema does not define a mutation type")
		}
		return s.MutationType(), true, nil
	case "subscription":
		if s.SubscriptionType() == nil {
			return nil, false, newError(KindCompilation, operation, "the schema does not define a subscription type")
		}
		return s.SubscriptionType(), false, nil
	}
	return nil, false, newError(KindCompilation, operation, "unknown operation type: %v", opType)
}

// Execute coerces rawVariables and runs the compiled query once against rootValue, blocking until
// every resolver it fanned out to — synchronous or asynchronous — has settled.
func (q *CompiledQuery) Execute(ctx context.Context, rootValue interface{}, rawVariables map[string]interface{}) *ExecutionResult {
	return waitFuture(q.ExecuteAsync(ctx, rootValue, rawVariables))
}

// ExecuteAsync is Execute's non-blocking counterpart, for callers already inside an asynchronous
// context (e.g. a subscription event handler) that want to chain onto completion themselves rather
// than block a goroutine waiting for it.
func (q *CompiledQuery) ExecuteAsync(ctx context.Context, rootValue interface{}, rawVariables map[string]interface{}) *future.Future[*ExecutionResult] {
	variables, verrs := q.variables.Coerce(rawVariables)
	if len(verrs) > 0 {
		return future.Ok(&ExecutionResult{Errors: verrs})
	}
	return execute(ctx, q.schema, q.operation, q.fragments, q.plan, q.nullability, rootValue, variables, q.options, q.serial)
}

func waitFuture(fut *future.Future[*ExecutionResult]) *ExecutionResult {
	done := make(chan *ExecutionResult, 1)
	fut.OnResolve(func(r future.Result[*ExecutionResult]) { done <- r.Value })
	return <-done
}
