package middleware_test

import (
	"bytes"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jsamuelsen11/onion/internal/adapters/http/middleware"
	appctx "github.com/jsamuelsen11/onion/internal/app/context"
)

func TestChain_Empty(t *testing.T) {
	t.Parallel()

	rec := serve(get("/test"), middleware.Chain(), body("bare"))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "bare" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "bare")
	}
}

func TestChain_Order(t *testing.T) {
	t.Parallel()

	var order []string

	mw := func(name string) appctx.Handler {
		return func(_ *appctx.Context, next appctx.Next) error {
			order = append(order, name+":before")
			err := next()
			order = append(order, name+":after")
			return err
		}
	}

	serve(get("/test"),
		middleware.Chain(mw("first"), mw("second"), mw("third")),
		func(*appctx.Context, appctx.Next) error {
			order = append(order, "handler")
			return nil
		},
	)

	expected := []string{
		"first:before", "second:before", "third:before",
		"handler",
		"third:after", "second:after", "first:after",
	}

	if len(order) != len(expected) {
		t.Fatalf("execution order length = %d, want %d: %v", len(order), len(expected), order)
	}
	for i, got := range order {
		if got != expected[i] {
			t.Errorf("order[%d] = %q, want %q", i, got, expected[i])
		}
	}
}

func TestChain_ErrorStopsGroup(t *testing.T) {
	t.Parallel()

	var reached bool
	rec := serve(get("/test"),
		middleware.Chain(
			func(*appctx.Context, appctx.Next) error { return errSentinel },
			func(_ *appctx.Context, next appctx.Next) error {
				reached = true
				return next()
			},
		),
		body("unreachable"),
	)

	if reached {
		t.Error("handler after failing group member ran")
	}
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestChain_FullPipeline(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := testLogger(&buf)

	rec := serve(get("/pipeline"),
		middleware.Chain(
			middleware.Recovery(logger),
			middleware.RequestID(),
			middleware.CorrelationID(),
			middleware.OpenTelemetry(nil),
			middleware.Logging(logger),
			middleware.ResponseTime(),
			middleware.Timeout(5*time.Second),
		),
		func(c *appctx.Context, _ appctx.Next) error {
			if middleware.RequestIDFromContext(c) == "" {
				t.Error("request ID not in context")
			}
			if middleware.CorrelationIDFromContext(c) == "" {
				t.Error("correlation ID not in context")
			}
			c.SetBody("ok")
			return nil
		},
	)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "ok")
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("response missing X-Request-ID header")
	}
	if rec.Header().Get("X-Correlation-ID") == "" {
		t.Error("response missing X-Correlation-ID header")
	}
	if rec.Header().Get("X-Response-Time") == "" {
		t.Error("response missing X-Response-Time header")
	}

	logOutput := buf.String()
	if !strings.Contains(logOutput, "request started") {
		t.Error("log output missing 'request started'")
	}
	if !strings.Contains(logOutput, "request completed") {
		t.Error("log output missing 'request completed'")
	}
}
