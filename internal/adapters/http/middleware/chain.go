// Package middleware provides built-in onion handlers for the exchange
// chain.
//
// A typical registration order is:
//
//	Recovery → RequestID → CorrelationID → OpenTelemetry → Logging → ResponseTime → Timeout → application handlers
//
// Each handler is an appctx.Handler; code before next() runs on the way in
// and code after it runs on the way out. Handlers can be grouped with Chain.
package middleware

import (
	"github.com/jsamuelsen11/onion/internal/app/compose"
	appctx "github.com/jsamuelsen11/onion/internal/app/context"
)

// Chain groups handlers into a single handler. The first argument is the
// outermost. When the group's last handler calls next, the chain continues
// with whatever follows the group:
//
//	a.Use(Chain(Recovery(l), RequestID(), Logging(l))).Use(routes)
//
// runs the same as registering the four handlers one by one.
func Chain(handlers ...appctx.Handler) appctx.Handler {
	composed := compose.Compose(handlers...)
	return func(c *appctx.Context, next appctx.Next) error {
		return composed(c, next)
	}
}
