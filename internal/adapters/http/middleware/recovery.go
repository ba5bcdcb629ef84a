package middleware

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen11/onion/internal/adapters/http/dto"
	"github.com/jsamuelsen11/onion/internal/app/compose"
	appctx "github.com/jsamuelsen11/onion/internal/app/context"
)

// errInternalServer is the generic error returned to clients when a panic is
// recovered. The actual panic value and stack trace are logged but never
// exposed in the HTTP response.
var errInternalServer = errors.New("internal server error")

// Recovery returns a handler that turns a panic in any downstream handler
// into a logged 500 problem response. The chain already converts panics to
// *compose.PanicError; Recovery consumes that error so the exchange
// completes normally. Other errors pass through untouched. If the response
// headers have already been written, only the log entry is emitted.
func Recovery(logger *slog.Logger) appctx.Handler {
	return func(c *appctx.Context, next appctx.Next) error {
		err := next()

		var panicErr *compose.PanicError
		if !errors.As(err, &panicErr) {
			return err
		}

		logger.ErrorContext(c, "panic recovered",
			slog.String("panic", fmt.Sprint(panicErr.Value)),
			slog.String("stack", string(panicErr.Stack)),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
		)

		if c.Committed() {
			return nil
		}

		resp := dto.NewErrorResponse(c.Req(), errInternalServer)
		c.SetStatus(resp.Status)
		c.SetType("application/problem+json")
		c.SetBody(resp)
		return nil
	}
}
