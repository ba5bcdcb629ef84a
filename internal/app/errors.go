package app

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/onion/internal/adapters/http/dto"
	"github.com/jsamuelsen11/onion/internal/app/compose"
	appctx "github.com/jsamuelsen11/onion/internal/app/context"
	"github.com/jsamuelsen11/onion/internal/platform/logging"
)

// DefaultErrorHandler logs the failure and, unless the status line has
// already been sent, writes an RFC 9457 problem response. Client errors
// (*appctx.HTTPError with a 4xx status) are logged at WARN; everything else
// at ERROR. The exchange's own logger is preferred when the Logging handler
// attached one.
func DefaultErrorHandler(logger *slog.Logger) ErrorHandler {
	return func(c *appctx.Context, err error) {
		l := logging.FromContextOr(c, logger)
		status := dto.StatusFor(err)

		attrs := []any{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Any("error", err),
		}
		if errors.Is(err, compose.ErrNextCalledMultipleTimes) {
			attrs = append(attrs, slog.Bool("chain_misuse", true))
		}
		var panicErr *compose.PanicError
		if errors.As(err, &panicErr) {
			attrs = append(attrs, slog.String("stack", string(panicErr.Stack)))
		}

		if status < http.StatusInternalServerError {
			l.WarnContext(c, "exchange rejected", attrs...)
		} else {
			l.ErrorContext(c, "exchange failed", attrs...)
		}

		if c.Committed() {
			return
		}
		dto.WriteErrorResponse(c.Res(), c.Req(), err)
	}
}
