// Package server exposes document conversion over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/net/netutil"

	"github.com/tsawler/docmark/markdown"
)

// Converter converts one document. *docmark.Engine satisfies it.
type Converter interface {
	Convert(data []byte, filename string, opts markdown.Options) (string, error)
}

// Config holds server settings.
type Config struct {
	Addr           string
	MaxUploadBytes int64

	// MaxConnections caps simultaneously accepted connections; zero means
	// no cap.
	MaxConnections int

	// Workers bounds concurrent conversions; zero selects GOMAXPROCS.
	Workers int

	AllowedOrigins []string

	// Defaults apply to form fields a request leaves out.
	Defaults markdown.Options
	Version  string
}

// Server is the HTTP front end for a Converter.
type Server struct {
	config    Config
	converter Converter
	logger    *slog.Logger
	workers   *pool.Pool
	handler   http.Handler
}

// New creates a Server. A nil logger discards log output.
func New(converter Converter, config Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if config.Workers < 1 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = 50 << 20
	}
	if config.Version == "" {
		config.Version = "dev"
	}

	s := &Server{
		config:    config,
		converter: converter,
		logger:    logger,
		workers:   pool.New().WithMaxGoroutines(config.Workers),
	}
	s.handler = s.routes()
	return s
}

// Handler returns the server's HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// The same API is served at the root and under /api.
	for _, prefix := range []string{"", "/api"} {
		mux.HandleFunc("GET "+prefix+"/health", s.handleHealth)
		mux.HandleFunc("GET "+prefix+"/formats", s.handleFormats)
		mux.HandleFunc("POST "+prefix+"/convert", s.handleConvert)
	}
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /api/{$}", s.handleRoot)

	// Middleware chain: recovery -> cors -> logging -> mux
	var handler http.Handler = mux
	handler = s.logMiddleware(handler)
	handler = corsMiddleware(s.config.AllowedOrigins, handler)
	handler = s.recoveryMiddleware(handler)
	return handler
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.config.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled. In-flight requests and
// conversions are allowed to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.config.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.config.MaxConnections)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	s.workers.Wait()
	if err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
