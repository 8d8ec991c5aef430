package jit

import (
	"fmt"

	"github.com/lindenhill/gqljit/ast"
	"github.com/pkg/errors"
)

// Kind classifies an Error by its origin, per the error taxonomy.
type Kind int

const (
	KindCompilation Kind = iota
	KindVariableCoercion
	KindArgumentNull
	KindResolverFailure
	KindAbstractUnknown
	KindAbstractNotPossible
	KindExpectedIterable
	KindLeafInvalid
	KindNonNullViolation
)

// Location identifies a character within a query document's source text.
type Location struct {
	Line   int
	Column int
}

// Error represents a single error surfaced by compilation or execution.
type Error struct {
	Kind      Kind
	Message   string
	Locations []Location
	Path      []interface{}

	// Original preserves reference identity to a resolver's thrown error, if any. Wrapping (via
	// Stack) never replaces this value.
	Original error

	// Stack holds a captured stack trace, present unless CompileOptions.DisableCapturingStackErrors
	// is set.
	Stack error
}

func (err *Error) Error() string {
	return err.Message
}

// Unwrap returns the original resolver error, if this Error originated from one.
func (err *Error) Unwrap() error {
	return err.Original
}

func newError(kind Kind, node ast.Node, message string, args ...interface{}) *Error {
	return newErrorWithPath(kind, node, nil, message, args...)
}

func newErrorWithPath(kind Kind, node ast.Node, path *Path, message string, args ...interface{}) *Error {
	ret := &Error{
		Kind:    kind,
		Message: fmt.Sprintf(message, args...),
	}
	if node != nil {
		pos := node.Position()
		ret.Locations = []Location{{Line: pos.Line, Column: pos.Column}}
	}
	if path != nil {
		ret.Path = path.AsArray()
	}
	return ret
}

// newResolverError wraps a value returned or panicked by a resolver into a RESOLVER_FAILURE error,
// capturing a stack trace unless disabled. The original error's identity is always preserved.
func newResolverError(path *Path, original error, captureStack bool) *Error {
	ret := &Error{
		Kind:     KindResolverFailure,
		Message:  original.Error(),
		Original: original,
	}
	if path != nil {
		ret.Path = path.AsArray()
	}
	if captureStack {
		ret.Stack = errors.WithStack(original)
	}
	return ret
}
