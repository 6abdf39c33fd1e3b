package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rmercier/bluescan/internal/logging"
	"github.com/rmercier/bluescan/internal/scan"
)

// Config holds the server configuration
type Config struct {
	Host     string
	Port     int
	LogLevel string

	// DefaultDuration is the scan window applied when a request omits
	// duration_seconds.
	DefaultDuration time.Duration

	// GracePeriod bounds source teardown after the scan window closes.
	GracePeriod time.Duration

	// Sequential disables concurrent source fan-out.
	Sequential bool
}

// Server exposes the scan pipeline over an HTTP API
type Server struct {
	config  *Config
	sources []scan.Source
	enrich  func(*scan.CanonicalDevice)

	httpServer *http.Server
}

// New creates a new Server instance over the given scan sources (in
// priority order).
func New(config *Config, sources []scan.Source, enrich func(*scan.CanonicalDevice)) (*Server, error) {
	if err := logging.Initialize(config.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no scan sources configured")
	}
	if config.DefaultDuration <= 0 {
		config.DefaultDuration = 5 * time.Second
	}

	s := &Server{
		config:  config,
		sources: sources,
		enrich:  enrich,
	}
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler: s.routes(),

		// Scans block the handler for the whole window, so write timeouts
		// must cover the longest accepted duration.
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute,
	}
	return s, nil
}

// aggregator builds a fresh aggregator for one request. Progress handlers
// are per-run state, so aggregators are never shared between requests.
func (s *Server) aggregator() *scan.Aggregator {
	a := scan.NewAggregator(s.sources...)
	if s.enrich != nil {
		a.WithEnricher(s.enrich)
	}
	return a
}

// Start starts the server and blocks until shutdown
func (s *Server) Start() error {
	logging.Info("Starting bluescan API server",
		zap.String("addr", s.httpServer.Addr),
		zap.String("log_level", s.config.LogLevel),
		zap.Duration("default_duration", s.config.DefaultDuration),
	)

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
			return
		}
		errChan <- nil
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping server...")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server, letting in-flight scans
// finish within a bounded window.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		logging.Warn("Shutdown timeout, forcing close", zap.Error(err))
		_ = s.httpServer.Close()
	}

	logging.Sync()
	return nil
}
