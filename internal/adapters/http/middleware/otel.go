package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen11/onion/internal/adapters/http/dto"
	"github.com/jsamuelsen11/onion/internal/app/compose"
	appctx "github.com/jsamuelsen11/onion/internal/app/context"
	"github.com/jsamuelsen11/onion/internal/platform/telemetry"
)

// OpenTelemetry returns a handler that creates a server span for each
// exchange and records exchange metrics. It extracts W3C Trace Context
// from incoming headers so that distributed traces are connected, and
// attaches the span to the exchange context for downstream handlers.
//
// If metrics is nil, metric recording is skipped (safe nil check).
func OpenTelemetry(metrics *telemetry.Metrics) appctx.Handler {
	return func(c *appctx.Context, next appctx.Next) error {
		start := time.Now()

		ctx := otel.GetTextMapPropagator().Extract(c.Context(), propagation.HeaderCarrier(c.Req().Header))

		tracer := otel.GetTracerProvider().Tracer("middleware")
		spanName := fmt.Sprintf("HTTP %s %s", c.Method(), c.Path())
		ctx, span := tracer.Start(ctx, spanName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.url", c.URL()),
			),
		)
		defer span.End()

		parent := c.Context()
		defer c.SetContext(parent)
		c.SetContext(ctx)

		err := next()

		status := c.Status()
		if err != nil {
			status = dto.StatusFor(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		span.SetAttributes(attribute.Int("http.status_code", status))

		recordExchangeMetrics(c, metrics, c.Method(), start, status, err)
		return err
	}
}

// recordExchangeMetrics records exchange duration, count and chain error
// metrics. Safe to call with nil metrics.
func recordExchangeMetrics(ctx context.Context, metrics *telemetry.Metrics, method string, start time.Time, status int, err error) {
	if metrics == nil {
		return
	}

	duration := time.Since(start).Seconds()

	result := "success"
	if err != nil || status >= http.StatusBadRequest {
		result = "error"
	}

	attrs := metric.WithAttributes(
		telemetry.AttrHTTPMethod.String(method),
		telemetry.AttrHTTPStatus.Int(status),
		telemetry.AttrResult.String(result),
	)

	metrics.ExchangeDuration.Record(ctx, duration, attrs)
	metrics.ExchangeTotal.Add(ctx, 1, attrs)

	if err != nil {
		metrics.ChainErrors.Add(ctx, 1, metric.WithAttributes(
			telemetry.AttrHTTPMethod.String(method),
			telemetry.AttrErrorKind.String(errorKind(err)),
		))
	}
}

// errorKind classifies a chain error for the error.kind attribute.
func errorKind(err error) string {
	var (
		panicErr *compose.PanicError
		httpErr  *appctx.HTTPError
	)
	switch {
	case errors.As(err, &panicErr):
		return "panic"
	case errors.Is(err, compose.ErrNextCalledMultipleTimes):
		return "chain_misuse"
	case errors.As(err, &httpErr):
		return "http"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "handler"
	}
}
