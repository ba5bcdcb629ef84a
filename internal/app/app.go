// Package app is the dispatcher: it owns the registered handler chain and
// turns every inbound HTTP request into one exchange.
//
// Per exchange the dispatcher creates a fresh context, runs the composed
// chain, and then decides exactly once what goes on the wire:
//
//	created -> running -> completed -> written   (body or default body)
//	                   \-> failed    -> written   (ErrorHandler)
//
// Usage:
//
//	a := app.New(app.WithLogger(logger))
//	a.Use(middleware.Logging(logger)).
//		Use(func(c *appctx.Context, next appctx.Next) error {
//			c.SetBody("hello")
//			return nil
//		})
//	srv := a.Listen(ctx, cfg.Server)
//	<-srv.Listening()
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	adapthttp "github.com/jsamuelsen11/onion/internal/adapters/http"
	"github.com/jsamuelsen11/onion/internal/app/compose"
	appctx "github.com/jsamuelsen11/onion/internal/app/context"
	"github.com/jsamuelsen11/onion/internal/platform/config"
)

// DefaultBody is written when the chain completes without assigning a body.
const DefaultBody = "koa response"

// ErrorHandler is the single decision point for failed exchanges. It is
// called at most once per exchange, after the chain has settled.
type ErrorHandler func(c *appctx.Context, err error)

// ErrorReporter receives errors that happen after the response decision,
// such as a client hanging up mid-write. It must be safe for concurrent use.
type ErrorReporter func(err error)

// WriteError wraps a failure to write the response to the client.
type WriteError struct {
	Method string
	Path   string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing response for %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger used for dispatcher diagnostics and by the
// default error handler and reporter.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithDefaultBody replaces DefaultBody.
func WithDefaultBody(body string) Option {
	return func(a *App) {
		a.defaultBody = body
	}
}

// WithErrorHandler replaces DefaultErrorHandler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		if h != nil {
			a.onError = h
		}
	}
}

// WithErrorReporter sets where write failures are sent. The default logs them.
func WithErrorReporter(r ErrorReporter) Option {
	return func(a *App) {
		if r != nil {
			a.report = r
		}
	}
}

// WithPhaseHook registers fn to observe every exchange phase change.
func WithPhaseHook(fn func(c *appctx.Context, p Phase)) Option {
	return func(a *App) {
		a.onPhase = fn
	}
}

// App holds the ordered handler chain. Registration and serving may
// overlap; each exchange runs the chain as it was when the exchange began.
type App struct {
	mu       sync.RWMutex
	handlers []appctx.Handler
	chain    compose.Func[*appctx.Context]

	logger      *slog.Logger
	defaultBody string
	onError     ErrorHandler
	report      ErrorReporter
	onPhase     func(c *appctx.Context, p Phase)
}

// New creates an App with no handlers.
func New(opts ...Option) *App {
	a := &App{
		logger:      slog.New(slog.DiscardHandler),
		defaultBody: DefaultBody,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.onError == nil {
		a.onError = DefaultErrorHandler(a.logger)
	}
	if a.report == nil {
		a.report = logReporter(a.logger)
	}
	a.chain = compose.Compose[*appctx.Context]()
	return a
}

// Use appends h to the chain and returns the App for chaining. It panics if
// h is nil.
func (a *App) Use(h appctx.Handler) *App {
	if h == nil {
		panic(fmt.Errorf("app.Use: %w", compose.ErrNilHandler))
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.handlers = append(a.handlers, h)
	a.chain = compose.Compose(a.handlers...)
	a.logger.Debug("handler registered", slog.Int("position", len(a.handlers)))
	return a
}

// Len returns the number of registered handlers.
func (a *App) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.handlers)
}

func (a *App) current() compose.Func[*appctx.Context] {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.chain
}

// ServeHTTP handles one exchange.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rw := newResponseWriter(w)
	c := appctx.New(rw, r)
	ex := newExchange(func(p Phase) {
		if a.onPhase != nil {
			a.onPhase(c, p)
		}
	})

	a.advance(c, ex, PhaseRunning)
	err := a.current()(c, nil)

	var p payload
	if err == nil {
		p, err = a.prepare(c, rw)
	}

	if err != nil {
		a.advance(c, ex, PhaseFailed)
		a.onError(c, err)
	} else {
		a.advance(c, ex, PhaseCompleted)
		if werr := write(c, rw, p); werr != nil {
			a.report(&WriteError{Method: r.Method, Path: c.Path(), Err: werr})
		}
	}

	a.advance(c, ex, PhaseWritten)
	a.logger.DebugContext(c, "exchange written",
		slog.Int("status", rw.statusCode),
		slog.Int64("bytes", rw.written),
	)
}

func (a *App) advance(c *appctx.Context, ex *exchange, to Phase) {
	if err := ex.transition(to); err != nil {
		a.logger.ErrorContext(c, "exchange lifecycle violated", slog.Any("error", err))
	}
}

// Listen binds the App to the configured address and serves it in the
// background until ctx is done. The returned server's Listening channel
// closes once the address is bound; Wait reports the serve error.
func (a *App) Listen(ctx context.Context, cfg config.ServerConfig) *adapthttp.Server {
	srv := adapthttp.NewServer(cfg, a, a.logger)

	go func() {
		_ = srv.Start()
	}()

	go func() {
		select {
		case <-ctx.Done():
			if err := srv.Shutdown(context.WithoutCancel(ctx)); err != nil {
				a.logger.Error("shutting down listener", slog.Any("error", err))
			}
		case <-srv.Done():
		}
	}()

	return srv
}

func logReporter(logger *slog.Logger) ErrorReporter {
	return func(err error) {
		var werr *WriteError
		if errors.As(err, &werr) {
			logger.Error("response write failed",
				slog.String("method", werr.Method),
				slog.String("path", werr.Path),
				slog.Any("error", werr.Err),
			)
			return
		}
		logger.Error("exchange error", slog.Any("error", err))
	}
}
