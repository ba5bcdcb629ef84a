package middleware

import (
	"context"

	"github.com/google/uuid"

	appctx "github.com/jsamuelsen11/onion/internal/app/context"
)

const headerRequestID = "X-Request-ID"

// StateRequestID is the appctx state key holding the exchange's request ID.
const StateRequestID = "request_id"

// requestIDKey is the context key for storing request IDs.
type requestIDKey struct{}

// WithRequestID returns a new context with the given request ID stored in it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext extracts the request ID from the context.
// Returns an empty string if no request ID is stored.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// RequestID returns a handler that generates or extracts an X-Request-ID for
// each exchange. If the incoming request has an X-Request-ID header, it is
// reused; otherwise a new UUID v4 is generated. The ID is attached to the
// exchange context, stored under StateRequestID, and echoed as a response
// header.
func RequestID() appctx.Handler {
	return func(c *appctx.Context, next appctx.Next) error {
		id := c.Header(headerRequestID)
		if id == "" {
			id = uuid.New().String()
		}
		c.SetContext(WithRequestID(c.Context(), id))
		c.Set(StateRequestID, id)
		c.SetHeader(headerRequestID, id)
		return next()
	}
}
