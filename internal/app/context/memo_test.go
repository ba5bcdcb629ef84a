package appctx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const testFetchValue = "fetched"

func newTestContext() *Context {
	return New(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", http.NoBody))
}

func TestGetOrFetch_CallsFetchOnMiss(t *testing.T) {
	t.Parallel()
	c := newTestContext()

	val, err := GetOrFetch(c, "key", func(_ context.Context) (string, error) {
		return testFetchValue, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != testFetchValue {
		t.Fatalf("got %q, want %q", val, testFetchValue)
	}
}

func TestGetOrFetch_Memoizes(t *testing.T) {
	t.Parallel()
	c := newTestContext()
	calls := 0

	fetchFn := func(_ context.Context) (string, error) {
		calls++
		return testFetchValue, nil
	}

	_, _ = GetOrFetch(c, "key", fetchFn)
	val, err := GetOrFetch(c, "key", fetchFn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != testFetchValue {
		t.Fatalf("got %q, want %q", val, testFetchValue)
	}
	if calls != 1 {
		t.Fatalf("fetchFn called %d times, want 1", calls)
	}
}

func TestGetOrFetch_CachesErrors(t *testing.T) {
	t.Parallel()
	c := newTestContext()
	calls := 0
	fetchErr := errors.New("fetch failed")

	fetchFn := func(_ context.Context) (string, error) {
		calls++
		return "", fetchErr
	}

	_, _ = GetOrFetch(c, "key", fetchFn)
	val, err := GetOrFetch(c, "key", fetchFn)

	if !errors.Is(err, fetchErr) {
		t.Fatalf("got error %v, want %v", err, fetchErr)
	}
	if val != "" {
		t.Fatalf("got %q, want empty string", val)
	}
	if calls != 1 {
		t.Fatalf("fetchFn called %d times, want 1", calls)
	}
}

func TestGetOrFetch_TypeMismatch(t *testing.T) {
	t.Parallel()
	c := newTestContext()

	_, _ = GetOrFetch(c, "key", func(_ context.Context) (int, error) { return 1, nil })
	_, err := GetOrFetch(c, "key", func(_ context.Context) (string, error) { return "x", nil })

	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("got error %v, want ErrTypeMismatch", err)
	}
}

func TestGetOrFetch_ReceivesExchangeContext(t *testing.T) {
	t.Parallel()

	type key struct{}
	r := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	r = r.WithContext(context.WithValue(r.Context(), key{}, "from-request"))
	c := New(httptest.NewRecorder(), r)

	val, err := GetOrFetch(c, "key", func(ctx context.Context) (any, error) {
		return ctx.Value(key{}), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "from-request" {
		t.Fatalf("got %v, want %q", val, "from-request")
	}
}

func TestGetOrFetch_IsolatedPerExchange(t *testing.T) {
	t.Parallel()
	a := newTestContext()
	b := newTestContext()

	_, _ = GetOrFetch(a, "key", func(_ context.Context) (int, error) { return 1, nil })

	calls := 0
	val, _ := GetOrFetch(b, "key", func(_ context.Context) (int, error) {
		calls++
		return 2, nil
	})
	if val != 2 || calls != 1 {
		t.Fatalf("second exchange saw first exchange's cache: val=%d calls=%d", val, calls)
	}
}

func TestGetOrFetch_SeparateFromState(t *testing.T) {
	t.Parallel()
	c := newTestContext()

	c.Set("user", "from-state")
	val, err := GetOrFetch(c, "user", func(_ context.Context) (string, error) {
		return testFetchValue, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != testFetchValue {
		t.Fatalf("GetOrFetch = %q, want %q (state must not satisfy the memo)", val, testFetchValue)
	}
	if got := c.Get("user"); got != "from-state" {
		t.Fatalf("Get = %v, want %q (memo must not overwrite state)", got, "from-state")
	}
}
