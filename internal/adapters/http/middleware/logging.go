package middleware

import (
	"log/slog"
	"time"

	"github.com/jsamuelsen11/onion/internal/adapters/http/dto"
	appctx "github.com/jsamuelsen11/onion/internal/app/context"
	"github.com/jsamuelsen11/onion/internal/platform/logging"
)

// Logging returns a handler that logs exchange start and completion events.
// It creates a child logger enriched with the request ID and correlation ID,
// attaches it via logging.WithLogger for downstream use, and on the way out
// logs the status the exchange is about to be written with.
func Logging(logger *slog.Logger) appctx.Handler {
	return func(c *appctx.Context, next appctx.Next) error {
		start := time.Now()

		child := logger.With(
			slog.String("request_id", RequestIDFromContext(c)),
			slog.String("correlation_id", CorrelationIDFromContext(c)),
		)
		c.SetContext(logging.WithLogger(c.Context(), child))

		child.InfoContext(c, "request started",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
		)

		if child.Enabled(c, slog.LevelDebug) {
			headerAttrs := RedactHeaders(c.Req().Header)
			args := make([]any, 0, len(headerAttrs))
			for _, a := range headerAttrs {
				args = append(args, a)
			}
			child.DebugContext(c, "request headers", args...)
		}

		err := next()
		if err != nil {
			child.WarnContext(c, "request failed",
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.Int("status", dto.StatusFor(err)),
				slog.Duration("duration", time.Since(start)),
				slog.Any("error", err),
			)
			return err
		}

		child.InfoContext(c, "request completed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", c.Status()),
			slog.Bool("body_set", c.Response().BodySet()),
			slog.Duration("duration", time.Since(start)),
		)
		return nil
	}
}
