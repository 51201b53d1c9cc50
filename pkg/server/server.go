package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"promptlab/saturn/pkg/config"
	"promptlab/saturn/pkg/providers"
	"promptlab/saturn/pkg/telemetry/logging"
)

// Executor runs conversation operations. Satisfied by
// *conversation.Manager.
type Executor interface {
	Execute(ctx context.Context, args map[string]any) map[string]any
}

// Comparer runs comparison requests. Satisfied by *comparison.Runner.
type Comparer interface {
	Run(ctx context.Context, configs []map[string]any) map[string]any
}

// CatalogSource exposes provider model catalogs. Satisfied by
// *registry.Registry.
type CatalogSource interface {
	Catalogs() map[string][]providers.ModelInfo
}

// Server is the harness HTTP server.
type Server struct {
	config   *config.ServerConfig
	logger   *logging.Logger
	executor Executor
	comparer Comparer
	catalogs CatalogSource

	metricsPath    string
	metricsHandler http.Handler

	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// Options bundles the server's collaborators.
type Options struct {
	// Config is the server configuration (required).
	Config *config.ServerConfig

	// Logger is the structured logger. Defaults to a no-op logger.
	Logger *logging.Logger

	// Executor handles conversation operations (required).
	Executor Executor

	// Comparer handles comparison requests (required).
	Comparer Comparer

	// Catalogs serves the provider listing (required).
	Catalogs CatalogSource

	// MetricsHandler, when non-nil, is mounted at MetricsPath.
	MetricsHandler http.Handler

	// MetricsPath is the metrics endpoint path. Default: "/metrics".
	MetricsPath string
}

// NewServer creates a new server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	metricsPath := opts.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	return &Server{
		config:         opts.Config,
		logger:         logger,
		executor:       opts.Executor,
		comparer:       opts.Comparer,
		catalogs:       opts.Catalogs,
		metricsPath:    metricsPath,
		metricsHandler: opts.MetricsHandler,
		shutdownChan:   make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown, whether by
// signal, context cancellation, or an explicit Shutdown call.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        s.Handler(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		s.logger.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler. Exposed for tests with
// httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/conversation", s.handleConversation)
	mux.HandleFunc("/v1/compare", s.handleCompare)
	mux.HandleFunc("/v1/providers", s.handleProviders)
	mux.HandleFunc("/healthz", s.handleHealth)
	if s.metricsHandler != nil {
		mux.Handle(s.metricsPath, s.metricsHandler)
	}

	var handler http.Handler = mux
	handler = requestIDMiddleware(handler)
	handler = loggingMiddleware(s.logger)(handler)
	handler = recoveryMiddleware(s.logger)(handler)

	return handler
}
