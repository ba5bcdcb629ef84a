// Package compose turns an ordered list of handlers into a single callable
// with onion ordering: code before a handler's next() call runs on the way
// in, code after it runs on the way out.
//
// For handlers [A, B] the observable order is A before next, all of B,
// then A after next. A handler that never calls next stops the chain at
// that point; the composed call still returns once that handler returns.
//
//	run := compose.Compose(logRequest, setBody)
//	err := run(ctx, nil)
package compose

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"
)

// ErrNextCalledMultipleTimes is returned by a next continuation that has
// already been called once. It marks misuse of the chain, as opposed to an
// error produced by a handler.
var ErrNextCalledMultipleTimes = errors.New("next() called multiple times")

// ErrNilHandler is the panic value (wrapped) when a nil handler is composed.
var ErrNilHandler = errors.New("compose: handler must not be nil")

// Next invokes the remainder of the chain. It returns once every downstream
// handler has returned, with the first error raised downstream.
type Next func() error

// Handler processes one exchange. It may do work, call next to run the
// downstream handlers, and do more work after next returns.
type Handler[C any] func(ctx C, next Next) error

// Func is a composed chain. tail, when non-nil, runs after the last handler
// calls next.
type Func[C any] func(ctx C, tail Next) error

// PanicError is returned in place of a panic raised by a handler, so that
// panics travel up the chain the same way returned errors do.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// canceler is implemented by contexts that can report cancellation, such as
// context.Context.
type canceler interface {
	Err() error
}

// Compose returns a Func running handlers in order. The handler list is
// copied, so later changes to the caller's slice do not affect the chain.
// Compose panics if any handler is nil.
//
// Each next continuation may be called at most once; a second call returns
// ErrNextCalledMultipleTimes without running downstream handlers again, and
// the composed call fails with it even if the handler discards that result.
// If ctx implements Err() error and reports an error when next is called,
// next returns that error and the downstream handlers are abandoned.
func Compose[C any](handlers ...Handler[C]) Func[C] {
	for i, h := range handlers {
		if h == nil {
			panic(fmt.Errorf("%w: index %d", ErrNilHandler, i))
		}
	}

	chain := make([]Handler[C], len(handlers))
	copy(chain, handlers)

	return func(ctx C, tail Next) error {
		var misused atomic.Bool
		var dispatch func(i int) error
		dispatch = func(i int) error {
			if i == len(chain) {
				if tail == nil {
					return nil
				}
				return invoke(func(C, Next) error { return tail() }, ctx, nil)
			}

			var called atomic.Bool
			next := func() error {
				if !called.CompareAndSwap(false, true) {
					misused.Store(true)
					return ErrNextCalledMultipleTimes
				}
				if c, ok := any(ctx).(canceler); ok {
					if err := c.Err(); err != nil {
						return err
					}
				}
				return dispatch(i + 1)
			}

			return invoke(chain[i], ctx, next)
		}

		err := dispatch(0)
		if err == nil && misused.Load() {
			return ErrNextCalledMultipleTimes
		}
		return err
	}
}

// invoke runs h and converts a panic into a *PanicError.
func invoke[C any](h Handler[C], ctx C, next Next) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Value: v, Stack: debug.Stack()}
		}
	}()
	return h(ctx, next)
}
