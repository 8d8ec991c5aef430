// Package future provides a minimal generic single-assignment future, used to bridge asynchronous
// resolver results into the engine's single-threaded cooperative scheduler. Unlike a channel, a
// Future never forces a goroutine hop: resolving it synchronously invokes every registered
// callback on the resolving goroutine.
package future

import "sync"

// Result holds either a value or an error, never both.
type Result[T any] struct {
	Value T
	Err   error
}

// IsOk reports whether the result is a value, not an error.
func (r Result[T]) IsOk() bool {
	return r.Err == nil
}

// Future represents a value of type T that becomes available at most once, at some point in the
// future. The zero value is not usable; construct with New.
type Future[T any] struct {
	mu        sync.Mutex
	done      bool
	result    Result[T]
	callbacks []func(Result[T])
}

// New returns an unresolved future.
func New[T any]() *Future[T] {
	return &Future[T]{}
}

// Ok returns a future that is already resolved with v.
func Ok[T any](v T) *Future[T] {
	f := New[T]()
	f.Resolve(Result[T]{Value: v})
	return f
}

// Err returns a future that is already resolved with err.
func Err[T any](err error) *Future[T] {
	f := New[T]()
	f.Resolve(Result[T]{Err: err})
	return f
}

// Resolve completes the future with r, synchronously invoking every callback registered via
// OnResolve so far (and, per OnResolve, any registered afterward immediately). Resolve may be
// called at most once; subsequent calls are no-ops, matching the "a handler may never be invoked
// more than once" requirement on the engine side.
func (f *Future[T]) Resolve(r Result[T]) {
	f.mu.Lock()
	if f.done {
		f.mu.Unlock()
		return
	}
	f.done = true
	f.result = r
	callbacks := f.callbacks
	f.callbacks = nil
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb(r)
	}
}

// OnResolve registers cb to run when the future resolves. If the future is already resolved, cb
// runs immediately, synchronously, on the calling goroutine.
func (f *Future[T]) OnResolve(cb func(Result[T])) {
	f.mu.Lock()
	if f.done {
		r := f.result
		f.mu.Unlock()
		cb(r)
		return
	}
	f.callbacks = append(f.callbacks, cb)
	f.mu.Unlock()
}

// IsReady reports whether the future has resolved.
func (f *Future[T]) IsReady() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done
}
