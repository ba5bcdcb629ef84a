package middleware_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/jsamuelsen11/onion/internal/adapters/http/middleware"
	appctx "github.com/jsamuelsen11/onion/internal/app/context"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// captureRequestID records the request ID seen by the innermost handler.
func captureRequestID(dst *string, state *any) appctx.Handler {
	return func(c *appctx.Context, _ appctx.Next) error {
		*dst = middleware.RequestIDFromContext(c)
		if state != nil {
			*state = c.Get(middleware.StateRequestID)
		}
		return nil
	}
}

func TestRequestID_GeneratesID(t *testing.T) {
	t.Parallel()

	var (
		gotID    string
		gotState any
	)
	rec := serve(get("/test"), middleware.RequestID(), captureRequestID(&gotID, &gotState))

	if gotID == "" {
		t.Fatal("RequestIDFromContext returned empty string, want generated ID")
	}
	if !uuidPattern.MatchString(gotID) {
		t.Errorf("generated ID %q does not match UUID v4 pattern", gotID)
	}
	if gotState != gotID {
		t.Errorf("state %q = %v, want %q", middleware.StateRequestID, gotState, gotID)
	}
	if respID := rec.Header().Get("X-Request-ID"); respID != gotID {
		t.Errorf("response X-Request-ID = %q, want %q", respID, gotID)
	}
}

func TestRequestID_ExtractsFromHeader(t *testing.T) {
	t.Parallel()

	var gotID string
	req := get("/test")
	req.Header.Set("X-Request-ID", "incoming-123")
	rec := serve(req, middleware.RequestID(), captureRequestID(&gotID, nil))

	if gotID != "incoming-123" {
		t.Errorf("RequestIDFromContext = %q, want %q", gotID, "incoming-123")
	}
	if respID := rec.Header().Get("X-Request-ID"); respID != "incoming-123" {
		t.Errorf("response X-Request-ID = %q, want %q", respID, "incoming-123")
	}
}

func TestRequestID_UniquenessAcrossRequests(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for range 100 {
		var id string
		serve(get("/test"), middleware.RequestID(), captureRequestID(&id, nil))
		if seen[id] {
			t.Fatalf("duplicate request ID generated: %q", id)
		}
		seen[id] = true
	}
}

func TestRequestIDFromContext_NotFound(t *testing.T) {
	t.Parallel()

	if id := middleware.RequestIDFromContext(context.Background()); id != "" {
		t.Errorf("RequestIDFromContext(empty) = %q, want empty string", id)
	}
}

func TestWithRequestID_StoresInContext(t *testing.T) {
	t.Parallel()

	ctx := middleware.WithRequestID(context.Background(), "stored-id")
	if id := middleware.RequestIDFromContext(ctx); id != "stored-id" {
		t.Errorf("RequestIDFromContext = %q, want %q", id, "stored-id")
	}
}
