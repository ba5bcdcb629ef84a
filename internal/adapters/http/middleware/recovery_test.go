package middleware_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jsamuelsen11/onion/internal/adapters/http/middleware"
	"github.com/jsamuelsen11/onion/internal/app"
	appctx "github.com/jsamuelsen11/onion/internal/app/context"
)

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// serve dispatches req through an App built from handlers.
func serve(req *http.Request, handlers ...appctx.Handler) *httptest.ResponseRecorder {
	a := app.New()
	for _, h := range handlers {
		a.Use(h)
	}
	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, req)
	return rec
}

func get(path string) *http.Request {
	return httptest.NewRequest(http.MethodGet, path, http.NoBody)
}

func body(s string) appctx.Handler {
	return func(c *appctx.Context, _ appctx.Next) error {
		c.SetBody(s)
		return nil
	}
}

func TestRecovery_NoPanic(t *testing.T) {
	t.Parallel()

	rec := serve(get("/test"), middleware.Recovery(discardLogger()), body("ok"))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "ok")
	}
}

func TestRecovery_HandlesPanic(t *testing.T) {
	t.Parallel()

	rec := serve(get("/test"),
		middleware.Recovery(discardLogger()),
		func(*appctx.Context, appctx.Next) error { panic("something went wrong") },
	)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}

	ct := rec.Header().Get("Content-Type")
	if ct != "application/problem+json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/problem+json")
	}

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	if title, _ := resp["title"].(string); title != "Internal Server Error" {
		t.Errorf("title = %q, want %q", title, "Internal Server Error")
	}
	if strings.Contains(rec.Body.String(), "something went wrong") {
		t.Error("panic value leaked into response body")
	}
}

func TestRecovery_LogsPanicWithStack(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	serve(get("/log-test"),
		middleware.Recovery(testLogger(&buf)),
		func(*appctx.Context, appctx.Next) error { panic("test panic value") },
	)

	logOutput := buf.String()
	if !strings.Contains(logOutput, "panic recovered") {
		t.Error("log output missing 'panic recovered'")
	}
	if !strings.Contains(logOutput, "test panic value") {
		t.Error("log output missing panic value")
	}
	if !strings.Contains(logOutput, "goroutine") {
		t.Error("log output missing stack trace")
	}
}

func TestRecovery_HandlesPanicDeepInChain(t *testing.T) {
	t.Parallel()

	var after bool
	rec := serve(get("/test"),
		middleware.Recovery(discardLogger()),
		func(_ *appctx.Context, next appctx.Next) error {
			err := next()
			after = true
			return err
		},
		func(*appctx.Context, appctx.Next) error { panic(42) },
	)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if !after {
		t.Error("intermediate handler did not resume after the panic")
	}
}

func TestRecovery_PassesOtherErrorsThrough(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rec := serve(get("/test"),
		middleware.Recovery(testLogger(&buf)),
		func(c *appctx.Context, _ appctx.Next) error {
			return c.Throw(http.StatusNotFound, "")
		},
	)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if strings.Contains(buf.String(), "panic recovered") {
		t.Error("non-panic error was logged as a panic")
	}
}

func TestRecovery_SkipsResponseIfHeadersAlreadyWritten(t *testing.T) {
	t.Parallel()

	rec := serve(get("/test"),
		middleware.Recovery(discardLogger()),
		func(c *appctx.Context, _ appctx.Next) error {
			c.Res().WriteHeader(http.StatusAccepted)
			_, _ = io.WriteString(c.Res(), "partial")
			panic("late panic")
		},
	)

	// Original status should be preserved since headers were already written.
	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want %d (original, not 500)", rec.Code, http.StatusAccepted)
	}
	if rec.Body.String() != "partial" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "partial")
	}
}

var errSentinel = errors.New("sentinel")
