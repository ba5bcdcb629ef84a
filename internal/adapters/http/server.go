package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jsamuelsen11/onion/internal/platform/config"
)

const defaultShutdownTimeout = 10 * time.Second

// Server wraps http.Server with graceful shutdown support and exposes the
// bind and exit events of its serve loop.
type Server struct {
	srv    *http.Server
	logger *slog.Logger

	listening chan struct{}
	done      chan struct{}
	bindOnce  sync.Once
	doneOnce  sync.Once

	mu    sync.Mutex
	bound net.Addr
	err   error
}

// NewServer creates a new HTTP server from the given config and handler.
func NewServer(cfg config.ServerConfig, handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		srv: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		logger:    logger,
		listening: make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start binds the configured address and serves HTTP requests.
// It blocks until the server stops. Returns nil on graceful shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		err = fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
		s.finish(err)
		return err
	}

	s.mu.Lock()
	s.bound = ln.Addr()
	s.mu.Unlock()
	s.bindOnce.Do(func() { close(s.listening) })

	s.logger.Info("starting HTTP server", slog.String("addr", ln.Addr().String()))

	err = s.srv.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		err = fmt.Errorf("http server error: %w", err)
	} else {
		err = nil
	}
	s.finish(err)
	return err
}

func (s *Server) finish(err error) {
	s.doneOnce.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.done)
	})
}

// Listening returns a channel that is closed once the listener is bound.
// It is never closed if binding fails; use Done to observe that case.
func (s *Server) Listening() <-chan struct{} {
	return s.listening
}

// Done returns a channel that is closed when Start returns.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until Start returns and reports its error.
func (s *Server) Wait() error {
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline. If ctx has no deadline,
// a default 10-second timeout is applied.
func (s *Server) Shutdown(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultShutdownTimeout)
		defer cancel()
	}

	s.logger.Info("shutting down HTTP server")
	return s.srv.Shutdown(ctx)
}

// Addr returns the server's configured listen address string.
func (s *Server) Addr() string {
	return s.srv.Addr
}

// BoundAddr returns the address the listener is bound to, which differs
// from Addr when port 0 was configured. It is empty before binding.
func (s *Server) BoundAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bound == nil {
		return ""
	}
	return s.bound.String()
}

// Name identifies the server in readiness reports.
func (s *Server) Name() string {
	return "http-server"
}

// HealthCheck reports whether the server is bound and still serving.
func (s *Server) HealthCheck(context.Context) error {
	select {
	case <-s.done:
		return errors.New("server stopped")
	default:
	}
	select {
	case <-s.listening:
		return nil
	default:
		return errors.New("server not listening")
	}
}
