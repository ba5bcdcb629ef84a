package appctx

import (
	"context"
	"net/url"
	"time"

	"github.com/jsamuelsen11/onion/internal/app/delegate"
)

// template holds every forwarding rule of Context. It is built once at
// package initialization and frozen; contexts hold no bindings themselves.
var template = delegate.NewTemplate[*Context]("context")

var (
	toRequest  = delegate.For(template, "request", func(c *Context) *RequestView { return c.request })
	toResponse = delegate.For(template, "response", func(c *Context) *ResponseView { return c.response })
)

// Request fields.
var (
	methodField = delegate.MustGetter(toRequest, "method", (*RequestView).Method)
	urlField    = delegate.MustGetter(toRequest, "url", (*RequestView).URL)
	pathField   = delegate.MustGetter(toRequest, "path", (*RequestView).Path)
	queryField  = delegate.MustGetter(toRequest, "query", (*RequestView).Query)
)

// Request methods, including the context.Context surface.
var (
	headerMethod = delegate.MustMethod(toRequest, "header",
		func(v *RequestView) func(string) string { return v.Header })
	contextField = delegate.MustAccess(toRequest, "context",
		(*RequestView).Context, (*RequestView).SetContext)
	deadlineMethod = delegate.MustMethod(toRequest, "deadline",
		func(v *RequestView) func() (time.Time, bool) { return v.Deadline })
	doneMethod = delegate.MustMethod(toRequest, "done",
		func(v *RequestView) func() <-chan struct{} { return v.Done })
	errMethod = delegate.MustMethod(toRequest, "err",
		func(v *RequestView) func() error { return v.Err })
	valueMethod = delegate.MustMethod(toRequest, "value",
		func(v *RequestView) func(any) any { return v.Value })
)

// Response fields and methods.
var (
	bodyField   = delegate.MustAccess(toResponse, "body", (*ResponseView).Body, (*ResponseView).SetBody)
	statusField = delegate.MustAccess(toResponse, "status", (*ResponseView).Status, (*ResponseView).SetStatus)
	typeField   = delegate.MustAccess(toResponse, "type", (*ResponseView).Type, (*ResponseView).SetType)

	setHeaderMethod = delegate.MustMethod(toResponse, "setHeader",
		func(v *ResponseView) func(string, string) { return v.SetHeader })
	removeHeaderMethod = delegate.MustMethod(toResponse, "removeHeader",
		func(v *ResponseView) func(string) { return v.RemoveHeader })
)

func init() {
	template.Freeze()
}

// Fields returns the names of all delegated fields and methods in
// definition order.
func Fields() []string {
	return template.Names()
}

// Binding describes where a delegated name forwards to.
func Binding(name string) (delegate.Binding, bool) {
	return template.Lookup(name)
}

// The forwarders below are what the Context methods call.

// Method returns the request method.
func (c *Context) Method() string { return methodField.Get(c) }

// URL returns the request URI (path and query).
func (c *Context) URL() string { return urlField.Get(c) }

// Path returns the request path.
func (c *Context) Path() string { return pathField.Get(c) }

// Query returns the first value of the named query parameter.
func (c *Context) Query(name string) string {
	return queryField.Get(c).Get(name)
}

// QueryValues returns the whole parsed query string.
func (c *Context) QueryValues() url.Values { return queryField.Get(c) }

// Header returns the first value of the named request header.
func (c *Context) Header(name string) string { return headerMethod.Bind(c)(name) }

// Body returns the response body, nil when unset.
func (c *Context) Body() any { return bodyField.Get(c) }

// SetBody assigns the response body. It is the same as
// c.Response().SetBody(body).
func (c *Context) SetBody(body any) { bodyField.Set(c, body) }

// Status returns the response status.
func (c *Context) Status() int { return statusField.Get(c) }

// SetStatus sets the response status.
func (c *Context) SetStatus(code int) { statusField.Set(c, code) }

// Type returns the response Content-Type.
func (c *Context) Type() string { return typeField.Get(c) }

// SetType sets the response Content-Type.
func (c *Context) SetType(contentType string) { typeField.Set(c, contentType) }

// SetHeader sets a response header.
func (c *Context) SetHeader(key, value string) { setHeaderMethod.Bind(c)(key, value) }

// RemoveHeader deletes a response header.
func (c *Context) RemoveHeader(key string) { removeHeaderMethod.Bind(c)(key) }

// Context returns the exchange's context.Context.
func (c *Context) Context() context.Context { return contextField.Get(c) }

// SetContext replaces the exchange's context.Context, e.g. to attach
// values. The new context must derive from c.Context().
func (c *Context) SetContext(ctx context.Context) { contextField.Set(c, ctx) }

// Deadline reports the deadline of the exchange context.
func (c *Context) Deadline() (time.Time, bool) { return deadlineMethod.Bind(c)() }

// Done returns the exchange context's done channel.
func (c *Context) Done() <-chan struct{} { return doneMethod.Bind(c)() }

// Err returns the exchange context's error.
func (c *Context) Err() error { return errMethod.Bind(c)() }

// Value looks key up in the exchange context.
func (c *Context) Value(key any) any { return valueMethod.Bind(c)(key) }
