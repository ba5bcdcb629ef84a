// Package appctx provides the per-exchange context handed to every handler
// in the chain.
//
// A Context owns only the raw request/response handles and two views of
// them: a RequestView and a ResponseView. Every other field is forwarded
// to one of the views through delegation rules defined once for the
// package, so that
//
//	c.SetBody("x")            // same as c.Response().SetBody("x")
//	c.Method()                // same as c.Request().Method()
//
// A new Context is created per exchange and must not be shared between
// exchanges:
//
//	c := appctx.New(w, r)
//
// Context implements context.Context by forwarding to the request view, so
// client disconnects cancel work started with it.
package appctx

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jsamuelsen11/onion/internal/app/compose"
)

// Compile-time check that Context is a context.Context.
var _ context.Context = (*Context)(nil)

// ErrTypeMismatch is returned by GetOrFetch when a cached value's type does
// not match the requested type T. This indicates a programming error where
// the same cache key is used with different types.
var ErrTypeMismatch = errors.New("appctx: cached value type mismatch")

// Handler is a handler in the exchange chain.
type Handler = compose.Handler[*Context]

// Next invokes the downstream handlers.
type Next = compose.Next

// Context is the per-exchange aggregate of a request view and a response
// view. It is NOT safe for concurrent use from multiple goroutines.
type Context struct {
	req      *http.Request
	res      http.ResponseWriter
	request  *RequestView
	response *ResponseView

	// state holds Set/Get values; cache holds GetOrFetch results. They are
	// separate so a Set key never shadows a memoized fetch.
	state map[string]any
	cache map[string]cacheEntry
}

// cacheEntry stores the result of a GetOrFetch call, including any error.
type cacheEntry struct {
	value any
	err   error
}

// New creates the Context for one exchange. The request and response views
// are fresh values bound to the same raw handles.
func New(w http.ResponseWriter, r *http.Request) *Context {
	return &Context{
		req:      r,
		res:      w,
		request:  &RequestView{req: r, res: w, ctx: r.Context()},
		response: &ResponseView{req: r, res: w},
	}
}

// Req returns the raw inbound request.
func (c *Context) Req() *http.Request { return c.req }

// Res returns the raw response writer. Headers set here are sent with the
// response the dispatcher writes.
func (c *Context) Res() http.ResponseWriter { return c.res }

// Committed reports whether the status line has already been sent through
// the raw response writer. Writers that cannot tell report false.
func (c *Context) Committed() bool {
	hw, ok := c.res.(interface{ HeaderWritten() bool })
	return ok && hw.HeaderWritten()
}

// Request returns the request view.
func (c *Context) Request() *RequestView { return c.request }

// Response returns the response view.
func (c *Context) Response() *ResponseView { return c.response }

// Field reads a delegated field by name, e.g. "method" or "body".
func (c *Context) Field(name string) (any, error) {
	return template.Get(c, name)
}

// SetField writes a delegated field by name.
func (c *Context) SetField(name string, value any) error {
	return template.Set(c, name, value)
}

// Set stores an exchange-local value for downstream handlers.
func (c *Context) Set(key string, value any) {
	if c.state == nil {
		c.state = make(map[string]any)
	}
	c.state[key] = value
}

// Get returns a value stored with Set, or nil.
func (c *Context) Get(key string) any {
	return c.state[key]
}

// GetOrFetch returns a cached value for the given key, or calls fetchFn to
// fetch and cache it. Both successful results and errors are cached to
// prevent redundant calls within the same exchange.
//
// The same key must always be used with the same type T. If a cached value
// exists but its type does not match T, GetOrFetch returns ErrTypeMismatch.
func GetOrFetch[T any](c *Context, key string, fetchFn func(ctx context.Context) (T, error)) (T, error) {
	if entry, ok := c.cache[key]; ok {
		if entry.err != nil {
			var zero T
			return zero, entry.err
		}
		v, ok := entry.value.(T)
		if !ok {
			var zero T
			return zero, fmt.Errorf("%w: key %q holds %T, requested %T", ErrTypeMismatch, key, entry.value, zero)
		}
		return v, nil
	}

	val, err := fetchFn(c)
	if c.cache == nil {
		c.cache = make(map[string]cacheEntry)
	}
	c.cache[key] = cacheEntry{value: val, err: err}
	return val, err
}
