package middleware

import (
	"strconv"
	"time"

	appctx "github.com/jsamuelsen11/onion/internal/app/context"
)

const headerResponseTime = "X-Response-Time"

// ResponseTime returns a handler that measures how long the rest of the
// chain takes and reports it in an X-Response-Time header, e.g. "12ms".
// The header is set even when the chain fails.
func ResponseTime() appctx.Handler {
	return func(c *appctx.Context, next appctx.Next) error {
		start := time.Now()
		err := next()
		c.SetHeader(headerResponseTime, strconv.FormatInt(time.Since(start).Milliseconds(), 10)+"ms")
		return err
	}
}
