package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

// Server runs the HTTP API and, on shutdown, drains it before the planner
// sessions are flushed.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	onShutdown      []func(ctx context.Context) error
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithWriteTimeout overrides the write timeout, e.g. for slow document exports.
func WithWriteTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		if d > 0 {
			s.httpServer.WriteTimeout = d
		}
	}
}

// WithShutdownHook runs fn after the listener stopped, within the shutdown timeout.
// Hooks run in registration order.
func WithShutdownHook(fn func(ctx context.Context) error) ServerOption {
	return func(s *Server) {
		if fn != nil {
			s.onShutdown = append(s.onShutdown, fn)
		}
	}
}

// NewServer creates a server listening on port.
func NewServer(handler http.Handler, port string, opts ...ServerOption) *Server {
	s := &Server{
		httpServer: &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
		shutdownTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run serves until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.RunContext(ctx)
}

// RunContext serves until ctx is done, then shuts down gracefully. A listener
// failure is returned without running the shutdown hooks.
func (s *Server) RunContext(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	errChan := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Msg("Server starting")
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		log.Info().Msg("Shutdown requested, draining requests")
	}
	return s.Shutdown()
}

// Shutdown stops accepting requests, waits for in-flight ones and then runs
// the shutdown hooks, all within the shutdown timeout.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return err
	}

	var errs []error
	for _, hook := range s.onShutdown {
		if err := hook(ctx); err != nil {
			log.Error().Err(err).Msg("Shutdown hook failed")
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	log.Info().Msg("Server stopped gracefully")
	return nil
}
