package appctx

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// RequestView exposes the inbound side of one exchange. It holds the raw
// handles shared with the Context and the ResponseView.
type RequestView struct {
	req *http.Request
	res http.ResponseWriter
	ctx context.Context
}

// Req returns the raw inbound request.
func (v *RequestView) Req() *http.Request { return v.req }

// Res returns the raw response writer.
func (v *RequestView) Res() http.ResponseWriter { return v.res }

// Method returns the request method.
func (v *RequestView) Method() string {
	return v.req.Method
}

// URL returns the request URI (path and query).
func (v *RequestView) URL() string {
	if v.req.URL == nil {
		return ""
	}
	return v.req.URL.RequestURI()
}

// Path returns the request path.
func (v *RequestView) Path() string {
	if v.req.URL == nil {
		return ""
	}
	return v.req.URL.Path
}

// Query returns the parsed query string.
func (v *RequestView) Query() url.Values {
	if v.req.URL == nil {
		return url.Values{}
	}
	return v.req.URL.Query()
}

// Header returns the first value of the named request header.
func (v *RequestView) Header(name string) string {
	return v.req.Header.Get(name)
}

// Context returns the exchange's context.Context. It starts as the raw
// request's context and may be replaced with SetContext.
func (v *RequestView) Context() context.Context {
	return v.ctx
}

// SetContext replaces the exchange's context.Context. The new context
// should be derived from the current one so that cancellation of the raw
// exchange still reaches handlers.
func (v *RequestView) SetContext(ctx context.Context) {
	if ctx == nil {
		return
	}
	v.ctx = ctx
}

// Deadline delegates to the exchange context.
func (v *RequestView) Deadline() (time.Time, bool) { return v.ctx.Deadline() }

// Done delegates to the exchange context.
func (v *RequestView) Done() <-chan struct{} { return v.ctx.Done() }

// Err delegates to the exchange context.
func (v *RequestView) Err() error { return v.ctx.Err() }

// Value delegates to the exchange context.
func (v *RequestView) Value(key any) any { return v.ctx.Value(key) }

// ResponseView exposes the outbound side of one exchange and owns the
// response body that handlers assign.
type ResponseView struct {
	req     *http.Request
	res     http.ResponseWriter
	body    any
	bodySet bool
	status  int
}

// Req returns the raw inbound request.
func (v *ResponseView) Req() *http.Request { return v.req }

// Res returns the raw response writer.
func (v *ResponseView) Res() http.ResponseWriter { return v.res }

// Body returns the response body, or nil when unset.
func (v *ResponseView) Body() any {
	return v.body
}

// SetBody assigns the response body. Assigning nil clears it, so the
// dispatcher treats the body as unset; an empty string is a real body.
func (v *ResponseView) SetBody(body any) {
	v.body = body
	v.bodySet = body != nil
}

// BodySet reports whether a non-nil body has been assigned.
func (v *ResponseView) BodySet() bool {
	return v.bodySet
}

// Status returns the response status, http.StatusOK when none was set.
func (v *ResponseView) Status() int {
	if v.status == 0 {
		return http.StatusOK
	}
	return v.status
}

// SetStatus sets the response status. Codes outside 100-999 are ignored.
func (v *ResponseView) SetStatus(code int) {
	if code < 100 || code > 999 {
		return
	}
	v.status = code
}

// Type returns the response Content-Type header.
func (v *ResponseView) Type() string {
	return v.res.Header().Get("Content-Type")
}

// SetType sets the response Content-Type header.
func (v *ResponseView) SetType(contentType string) {
	v.res.Header().Set("Content-Type", contentType)
}

// SetHeader sets a response header.
func (v *ResponseView) SetHeader(key, value string) {
	v.res.Header().Set(key, value)
}

// RemoveHeader deletes a response header.
func (v *ResponseView) RemoveHeader(key string) {
	v.res.Header().Del(key)
}
