package middleware

import (
	"context"
	"time"

	appctx "github.com/jsamuelsen11/onion/internal/app/context"
)

// Timeout returns a handler that puts a deadline on the exchange context.
// Downstream handlers that do I/O with the context observe the deadline,
// and once it passes any further next() call fails with
// context.DeadlineExceeded, which the default error handler answers with
// 504 Gateway Timeout.
//
// Handlers run on the exchange goroutine, so a handler that ignores its
// context is not interrupted. The parent context is restored when next
// returns, so outer handlers never see the released deadline.
func Timeout(timeout time.Duration) appctx.Handler {
	return func(c *appctx.Context, next appctx.Next) error {
		parent := c.Context()
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		defer c.SetContext(parent)

		c.SetContext(ctx)
		return next()
	}
}
