package jit

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/lindenhill/gqljit/ast"
	"github.com/lindenhill/gqljit/jit/internal/future"
	"github.com/lindenhill/gqljit/schema"
	"github.com/sirupsen/logrus"
)

// ExecutionResult is the outcome of running a compiled query once against a root value and
// variables.
type ExecutionResult struct {
	Data   interface{}
	Errors []*Error
}

// executionContext carries everything one request's plan interpretation needs. Every field
// touching nullErrors or a shared response map goes through mu, since a resolver's ResolveAsync
// future may settle on a goroutine the engine never spawned itself.
type executionContext struct {
	ctx       context.Context
	schema    *schema.Schema
	operation *ast.OperationDefinition
	fragments map[string]*ast.FragmentDefinition
	rootValue interface{}
	variables map[string]interface{}
	options   *CompileOptions
	logger    *logrus.Logger

	mu         sync.Mutex
	nullErrors []*Error
}

func newExecutionContext(ctx context.Context, s *schema.Schema, operation *ast.OperationDefinition, fragments map[string]*ast.FragmentDefinition, rootValue interface{}, variables map[string]interface{}, options *CompileOptions) *executionContext {
	return &executionContext{
		ctx:       ctx,
		schema:    s,
		operation: operation,
		fragments: fragments,
		rootValue: rootValue,
		variables: variables,
		options:   options,
		logger:    logrus.StandardLogger(),
	}
}

func (ec *executionContext) captureStack() bool {
	return ec.options == nil || !ec.options.DisableCapturingStackErrors
}

func (ec *executionContext) reportNullError(err *Error) {
	ec.mu.Lock()
	ec.nullErrors = append(ec.nullErrors, err)
	ec.mu.Unlock()
}

func (ec *executionContext) snapshotNullErrors() []*Error {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return append([]*Error{}, ec.nullErrors...)
}

func (ec *executionContext) setField(data *OrderedMap, key string, value interface{}) {
	ec.mu.Lock()
	data.Set(key, value)
	ec.mu.Unlock()
}

// execute drives plan's top-level fields against rootValue, returning a future that resolves once
// every resolver it fanned out to (synchronously or asynchronously) has settled. serial selects
// the mutation ordering discipline (spec.md §5); false runs every root field under one shared
// looseExecutor, matching query/subscription semantics.
func execute(ctx context.Context, s *schema.Schema, operation *ast.OperationDefinition, fragments map[string]*ast.FragmentDefinition, plan *ObjectPlan, nullability *nullabilityNode, rootValue interface{}, variables map[string]interface{}, options *CompileOptions, serial bool) *future.Future[*ExecutionResult] {
	ec := newExecutionContext(ctx, s, operation, fragments, rootValue, variables, options)
	out := future.New[*ExecutionResult]()
	data := newOrderedMap()

	finalize := func() {
		nullErrors := ec.snapshotNullErrors()
		trimmed, errs := trimNulls(data, nullability, nullErrors, nil)
		out.Resolve(future.Result[*ExecutionResult]{Value: &ExecutionResult{Data: trimmed, Errors: errs}})
	}

	if !serial {
		exec := newLooseExecutor(finalize)
		for _, f := range plan.Fields {
			ec.executeField(f, rootValue, exec, nil, data)
		}
		exec.leave()
		return out
	}

	if len(plan.Fields) == 0 {
		finalize()
		return out
	}

	sx := newSerialExecutor()
	remaining := len(plan.Fields)
	for _, f := range plan.Fields {
		f := f
		sx.enqueue(func(done func()) {
			exec := newLooseExecutor(func() {
				ec.mu.Lock()
				remaining--
				allDone := remaining == 0
				ec.mu.Unlock()
				if allDone {
					finalize()
				}
				done()
			})
			ec.executeField(f, rootValue, exec, nil, data)
			exec.leave()
		})
	}
	return out
}

// executeObject evaluates every field of obj against parentValue, writing each settled result
// (synchronously or, for suspended fields, once their future resolves) into a freshly allocated map
// handed back immediately; callers may read it only after exec's final callback has fired.
func (ec *executionContext) executeObject(obj *ObjectPlan, parentValue interface{}, exec *looseExecutor, path *Path) *OrderedMap {
	data := newOrderedMap()
	for _, f := range obj.Fields {
		ec.executeField(f, parentValue, exec, path, data)
	}
	return data
}

func (ec *executionContext) executeField(f *planField, parentValue interface{}, exec *looseExecutor, parentPath *Path, data *OrderedMap) {
	if f.ShouldInclude != nil && !f.ShouldInclude(ec.variables) {
		return
	}

	if constPlan, ok := f.Body.(*ConstPlan); ok {
		ec.setField(data, f.ResponseKey, constPlan.Value)
		return
	}

	args, argErr := ec.resolveArguments(f)
	if argErr != nil {
		ec.reportNullError(argErr)
		ec.setField(data, f.ResponseKey, nil)
		return
	}

	info := &ResolveInfo{
		FieldName:      f.FieldNodes[0].Name.Name,
		FieldNodes:     f.FieldNodes,
		ReturnType:     f.FieldDef.Type,
		ParentType:     f.ParentType,
		Schema:         ec.schema,
		Fragments:      ec.fragments,
		Operation:      ec.operation,
		RootValue:      ec.rootValue,
		VariableValues: ec.variables,
		Path:           f.Path,
		Context:        ec.ctx,
	}
	if enricher := ec.options.infoEnricher(); enricher != nil {
		if extra, err := enricher(info); err == nil {
			info.Enriched = map[string]interface{}{}
			for k, v := range extra {
				if mandatoryInfoKeys[k] {
					continue
				}
				info.Enriched[k] = v
			}
		}
	}
	if info.Enriched == nil {
		info.Enriched = map[string]interface{}{}
	}
	info.Enriched["fieldExpansion"] = f.Expansion

	fc := schema.FieldContext{
		Context:   withInfo(ec.ctx, info),
		Schema:    ec.schema,
		Object:    parentValue,
		Arguments: args,
	}

	if f.FieldDef.ResolveAsync != nil {
		exec.enter()
		fut := ec.invokeAsync(f.FieldDef, fc, f.Path)
		fut.OnResolve(func(r future.Result[interface{}]) {
			ec.completeFieldValue(f, r.Value, r.Err, exec, data)
			exec.leave()
		})
		return
	}

	value, err := ec.invokeSync(f.FieldDef, fc, f.Path)
	ec.completeFieldValue(f, value, err, exec, data)
}

func (ec *executionContext) invokeSync(fd *schema.FieldDefinition, fc schema.FieldContext, path *Path) (value interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			ec.logger.WithField("path", path.AsArray()).Warn("recovered panic in resolver")
			err = toError(r)
		}
	}()
	if fd.Resolve == nil {
		return nil, nil
	}
	return fd.Resolve(fc)
}

func (ec *executionContext) invokeAsync(fd *schema.FieldDefinition, fc schema.FieldContext, path *Path) (fut *future.Future[interface{}]) {
	defer func() {
		if r := recover(); r != nil {
			ec.logger.WithField("path", path.AsArray()).Warn("recovered panic in resolver")
			fut = future.Err[interface{}](toError(r))
		}
	}()
	return fd.ResolveAsync(fc)
}

// invokeSerialize guards a leaf's (possibly user-supplied, via CompileOptions.CustomSerializers)
// Serialize function the same way invokeSync/invokeAsync guard a resolver: a panic becomes a
// LEAF_INVALID error for this field instead of crashing the whole execution.
func (ec *executionContext) invokeSerialize(n *LeafPlan, value interface{}, path *Path) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			ec.logger.WithField("path", path.AsArray()).Warn("recovered panic in leaf serializer")
			err = toError(r)
		}
	}()
	return n.Serialize(value)
}

func toError(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}

func (ec *executionContext) completeFieldValue(f *planField, value interface{}, resolveErr error, exec *looseExecutor, data *OrderedMap) {
	if resolveErr != nil {
		ec.reportNullError(newResolverError(f.Path, resolveErr, ec.captureStack()))
		ec.setField(data, f.ResponseKey, nil)
		return
	}
	result := ec.completeValue(f.Body, value, exec, f.Path)
	ec.setField(data, f.ResponseKey, result)
}

// completeValue interprets node against a resolved value, recursing into nested object/list/
// abstract plans and recording a nullError (rather than panicking or returning early) whenever a
// slot can't be completed, so the rest of the response still finishes executing.
func (ec *executionContext) completeValue(node planNode, value interface{}, exec *looseExecutor, path *Path) interface{} {
	switch n := node.(type) {
	case *NonNullPlan:
		if value == nil {
			ec.reportNullError(newErrorWithPath(KindNonNullViolation, nil, path, "cannot return null for a non-nullable field"))
			return nil
		}
		return ec.completeValue(n.Inner, value, exec, path)

	case *ListPlan:
		if value == nil {
			return nil
		}
		items, ok := toInterfaceSlice(value)
		if !ok {
			ec.reportNullError(newErrorWithPath(KindExpectedIterable, nil, path, "expected an iterable value"))
			return nil
		}
		out := make([]interface{}, len(items))
		for i, item := range items {
			out[i] = ec.completeValue(n.Item, item, exec, path.WithKey(i, PathKindLiteral))
		}
		return out

	case *LeafPlan:
		if value == nil {
			return nil
		}
		serialized, err := ec.invokeSerialize(n, value, path)
		if err != nil {
			ec.reportNullError(newErrorWithPath(KindLeafInvalid, nil, path, "%v", err))
			return nil
		}
		return serialized

	case *ConstPlan:
		return n.Value

	case *ObjectPlan:
		if value == nil {
			return nil
		}
		return ec.executeObject(n, value, exec, path)

	case *AbstractPlan:
		if value == nil {
			return nil
		}
		concrete, err := n.ResolveType(value, ec.ctx)
		if err != nil {
			ec.reportNullError(newErrorWithPath(KindAbstractUnknown, nil, path, "%v", err))
			return nil
		}
		if concrete == nil {
			ec.reportNullError(newErrorWithPath(KindAbstractUnknown, nil, path, "could not determine the concrete type of a %v value", n.TypeName))
			return nil
		}
		branch, ok := n.Branches[concrete.Name]
		if !ok {
			ec.reportNullError(newErrorWithPath(KindAbstractNotPossible, nil, path, "%v is not a possible type for %v", concrete.Name, n.TypeName))
			return nil
		}
		return ec.completeValue(branch, value, exec, path)
	}
	return nil
}

func toInterfaceSlice(value interface{}) ([]interface{}, bool) {
	if s, ok := value.([]interface{}); ok {
		return s, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// resolveArguments clones the field's compile-time static argument values and splices in the
// current request's variable values at each MissingVariable placeholder, per spec.md §4.C/§6. The
// clone is required because Arguments.Values is shared, immutable plan state reused by every
// execution of the compiled query.
func (ec *executionContext) resolveArguments(f *planField) (map[string]interface{}, *Error) {
	if f.Args == nil {
		return nil, nil
	}
	values, _ := cloneArgValue(f.Args.Values).(map[string]interface{})
	if values == nil {
		values = map[string]interface{}{}
	}

	for _, mv := range f.Args.Missing {
		v, has := ec.variables[mv.Name]
		if !has || v == nil {
			if schema.IsNonNullType(mv.Type) {
				return nil, newErrorWithPath(KindArgumentNull, nil, f.Path, "the %v variable is required", mv.Name)
			}
			continue
		}
		setArgPath(values, mv.Path, v)
	}

	return values, nil
}

func cloneArgValue(v interface{}) interface{} {
	switch v := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, vv := range v {
			out[k] = cloneArgValue(vv)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, vv := range v {
			out[i] = cloneArgValue(vv)
		}
		return out
	default:
		return v
	}
}

func setArgPath(root map[string]interface{}, path []interface{}, value interface{}) {
	var cur interface{} = root
	for i, key := range path {
		last := i == len(path)-1
		switch k := key.(type) {
		case string:
			m, ok := cur.(map[string]interface{})
			if !ok {
				return
			}
			if last {
				m[k] = value
				return
			}
			next, ok := m[k]
			if !ok || next == nil {
				next = map[string]interface{}{}
				m[k] = next
			}
			cur = next
		case int:
			l, ok := cur.([]interface{})
			if !ok || k >= len(l) {
				return
			}
			if last {
				l[k] = value
				return
			}
			cur = l[k]
		}
	}
}
