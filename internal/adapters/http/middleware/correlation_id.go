package middleware

import (
	"context"

	appctx "github.com/jsamuelsen11/onion/internal/app/context"
)

const headerCorrelationID = "X-Correlation-ID"

// StateCorrelationID is the appctx state key holding the correlation ID.
const StateCorrelationID = "correlation_id"

// correlationIDKey is the context key for storing correlation IDs.
type correlationIDKey struct{}

// WithCorrelationID returns a new context with the given correlation ID
// stored in it.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// CorrelationIDFromContext extracts the correlation ID from the context.
// Returns an empty string if no correlation ID is stored.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}
	return ""
}

// CorrelationID returns a handler that extracts or derives an
// X-Correlation-ID for each exchange. If the incoming request has an
// X-Correlation-ID header, it is reused; otherwise the request ID is used
// as a fallback.
//
// This handler must run after RequestID so that the fallback value is
// available.
func CorrelationID() appctx.Handler {
	return func(c *appctx.Context, next appctx.Next) error {
		id := c.Header(headerCorrelationID)
		if id == "" {
			id = RequestIDFromContext(c)
		}
		c.SetContext(WithCorrelationID(c.Context(), id))
		c.Set(StateCorrelationID, id)
		c.SetHeader(headerCorrelationID, id)
		return next()
	}
}
