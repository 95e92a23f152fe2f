package ledger

import "context"

// Result is a one-shot asynchronous result handle. It is resolved exactly
// once, by the worker that executed the operation, and may be awaited from
// any goroutine. Abandoning an Await does not cancel the operation: an
// accepted mutation always runs to completion and stays durable.
type Result[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func newResult[T any]() *Result[T] {
	return &Result[T]{done: make(chan struct{})}
}

// resolve publishes the result. Must be called exactly once.
func (r *Result[T]) resolve(value T, err error) {
	r.value = value
	r.err = err
	close(r.done)
}

func resolved[T any](value T, err error) *Result[T] {
	r := newResult[T]()
	r.resolve(value, err)
	return r
}

// Await blocks until the operation resolves or ctx is done.
func (r *Result[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-r.done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done returns a channel closed when the result is available.
func (r *Result[T]) Done() <-chan struct{} {
	return r.done
}
