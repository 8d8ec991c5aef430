package jit

import (
	"context"

	"github.com/lindenhill/gqljit/schema"
)

// CreateSourceEventStream invokes a subscription operation's single root field with
// FieldContext.IsSubscribe set and returns the raw event channel it produces, per spec.md §4.J.
// The field's subselections are not executed here; each value read off the returned channel is
// the rootValue for one execution of the compiled query body, performed by Subscribe.
func (q *CompiledQuery) CreateSourceEventStream(ctx context.Context, rootValue interface{}, rawVariables map[string]interface{}) (<-chan interface{}, []*Error) {
	if !q.isSubscription() {
		return nil, []*Error{newError(KindCompilation, nil, "CreateSourceEventStream called on a non-subscription operation")}
	}
	if len(q.plan.Fields) != 1 {
		return nil, []*Error{newError(KindCompilation, nil, "a subscription operation must select exactly one root field")}
	}

	variables, verrs := q.variables.Coerce(rawVariables)
	if len(verrs) > 0 {
		return nil, verrs
	}

	f := q.plan.Fields[0]
	args, argErr := (&executionContext{variables: variables}).resolveArguments(f)
	if argErr != nil {
		return nil, []*Error{argErr}
	}

	fc := schema.FieldContext{
		Context:     ctx,
		Schema:      q.schema,
		Object:      rootValue,
		Arguments:   args,
		IsSubscribe: true,
	}

	value, err := f.FieldDef.Resolve(fc)
	if err != nil {
		return nil, []*Error{newResolverError(f.Path, err, q.captureStack())}
	}
	events, ok := value.(<-chan interface{})
	if !ok {
		if bidi, ok := value.(chan interface{}); ok {
			events = bidi
		} else {
			return nil, []*Error{newErrorWithPath(KindResolverFailure, nil, f.Path, "subscribe resolver did not return a source event stream")}
		}
	}
	return events, nil
}

func (q *CompiledQuery) isSubscription() bool {
	return q.schema.SubscriptionType() != nil && q.plan.TypeName == q.schema.SubscriptionType().Name
}

func (q *CompiledQuery) captureStack() bool {
	return q.options == nil || !q.options.DisableCapturingStackErrors
}

// Subscribe composes CreateSourceEventStream with a per-event mapper that runs the compiled
// query's root field's subselections against each event payload, per spec.md §4.J. It returns a
// channel of results, one per source event, closed when the source event stream closes; an error
// establishing the stream itself is reported as a single result and the returned channel is
// immediately closed.
func (q *CompiledQuery) Subscribe(ctx context.Context, rootValue interface{}, rawVariables map[string]interface{}) <-chan *ExecutionResult {
	out := make(chan *ExecutionResult, 1)

	events, errs := q.CreateSourceEventStream(ctx, rootValue, rawVariables)
	if len(errs) > 0 {
		out <- &ExecutionResult{Errors: errs}
		close(out)
		return out
	}

	variables, verrs := q.variables.Coerce(rawVariables)
	if len(verrs) > 0 {
		out <- &ExecutionResult{Errors: verrs}
		close(out)
		return out
	}

	f := q.plan.Fields[0]

	// Each event's subselections are completed synchronously: a per-event resolver suspending on
	// ResolveAsync would race the nullErrors snapshot below against its own completion callback.
	// Fine for the source-event-stream boundary this package targets; a resolver that needs to
	// suspend mid-event should do so inside the subscribe channel producer instead.
	go func() {
		defer close(out)
		for event := range events {
			ec := newExecutionContext(ctx, q.schema, q.operation, q.fragments, rootValue, variables, q.options)
			exec := newLooseExecutor(func() {})
			value := ec.completeValue(f.Body, event, exec, f.Path)
			exec.leave()
			nullErrors := ec.snapshotNullErrors()
			data := newOrderedMap()
			data.Set(f.ResponseKey, value)
			trimmed, resultErrs := trimNulls(data, q.nullability, nullErrors, nil)
			out <- &ExecutionResult{Data: trimmed, Errors: resultErrs}
		}
	}()

	return out
}
