package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/Belphemur/YoutubeAudio/internal/config"
	"golang.org/x/net/netutil"
)

// Hook runs at startup or shutdown. A failing startup hook aborts Run.
type Hook func(ctx context.Context) error

// Server owns the public HTTP listener and the lifecycle hooks around it.
// Both hook lists are empty unless callers register something.
type Server struct {
	httpServer      *http.Server
	maxConnections  int
	shutdownTimeout time.Duration
	startup         []Hook
	shutdown        []Hook
}

// Option configures a Server.
type Option func(*Server)

// WithMaxConnections caps concurrently accepted connections. Zero means no cap.
func WithMaxConnections(n int) Option {
	return func(s *Server) {
		s.maxConnections = n
	}
}

// WithShutdownTimeout bounds graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.shutdownTimeout = d
	}
}

// WithStartupHook registers a hook run before the listener accepts requests.
func WithStartupHook(h Hook) Option {
	return func(s *Server) {
		s.startup = append(s.startup, h)
	}
}

// WithShutdownHook registers a hook run after the listener stopped.
func WithShutdownHook(h Hook) Option {
	return func(s *Server) {
		s.shutdown = append(s.shutdown, h)
	}
}

// New creates a server for handler listening on address.
// No write timeout is set: a download holds its request open until the
// toolchain finishes.
func New(address string, handler http.Handler, opts ...Option) *Server {
	s := &Server{
		httpServer: &http.Server{
			Addr:              address,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		shutdownTimeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve runs the startup hooks, serves on ln until ctx is cancelled, then
// shuts down gracefully and runs the shutdown hooks.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	logger := config.GetLogger()

	for _, hook := range s.startup {
		if err := hook(ctx); err != nil {
			_ = ln.Close()
			return err
		}
	}

	if s.maxConnections > 0 {
		ln = netutil.LimitListener(ln, s.maxConnections)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("address", ln.Addr().String()).Int("max_connections", s.maxConnections).Msg("Starting HTTP server")
		errCh <- s.httpServer.Serve(ln)
	}()

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	case <-ctx.Done():
		logger.Info().Msg("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Failed to shutdown HTTP server gracefully")
			serveErr = err
		}
	}

	for _, hook := range s.shutdown {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		if err := hook(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Shutdown hook failed")
		}
		cancel()
	}

	return serveErr
}
