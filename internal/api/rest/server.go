package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/emcdo411/Schwab-Fraud-Detection/internal/infrastructure/config"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/infrastructure/store"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/metrics"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/service/analytics"
)

// Server serves the dashboard page and its API
type Server struct {
	config      *config.Config
	httpServer  *http.Server
	handler     *Handler
	logger      *slog.Logger
	tracer      trace.Tracer
	middlewares []Middleware
	health      *HealthService
}

// NewServer wires the API server over an already published dataset. The
// startup pipeline runs before this, so handlers never race dataset writes.
func NewServer(cfg *config.Config, logger *slog.Logger, analyticsService analytics.Service, datasetStore *store.DatasetStore, registry *metrics.Registry) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	base := NewBaseHandler(logger, cfg.Version)
	handler := NewHandler(base, analyticsService, registry)

	healthConfig := DefaultHealthConfig()
	healthConfig.ServiceVersion = cfg.Version
	healthConfig.Environment = cfg.Environment
	healthService := NewHealthService(healthConfig)
	healthService.RegisterChecker("dataset", NewDatasetHealthChecker(datasetStore))

	tracer := otel.Tracer("api.rest.server")

	requestTimeout := cfg.Server.WriteTimeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	middlewares := []Middleware{
		requestIDMiddleware,
		loggingMiddleware(logger),
		metricsMiddleware(registry),
		tracingMiddleware(tracer),
		recoveryMiddleware(logger),
		securityHeadersMiddleware,
		newIPRateLimiter(cfg.Server.RateLimit).middleware(),
		timeoutMiddleware(requestTimeout),
	}

	server := &Server{
		config:      cfg,
		handler:     handler,
		logger:      logger,
		tracer:      tracer,
		middlewares: middlewares,
		health:      healthService,
	}

	mux := server.setupRoutes()

	// Apply middleware chain, first entry outermost
	var h http.Handler = mux
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}

	server.httpServer = &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        h,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	return server
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Dashboard page
	mux.HandleFunc("GET /{$}", s.handler.handleDashboard)

	// Health checks
	mux.HandleFunc("GET /health", s.health.ReadinessHandler())
	mux.HandleFunc("GET /healthz", s.health.LivenessHandler())
	mux.HandleFunc("GET /ready", s.health.ReadinessHandler())

	// Prometheus metrics
	mux.Handle("GET /metrics", promhttp.Handler())

	// API v1 routes
	v1 := http.NewServeMux()
	v1.HandleFunc("GET /regions", s.handler.handleRegions)
	v1.HandleFunc("GET /charts/amount-histogram", s.handler.handleAmountHistogram)
	v1.HandleFunc("GET /charts/auth-outcomes", s.handler.handleAuthOutcomes)
	v1.HandleFunc("GET /transactions", s.handler.handleTransactions)
	v1.HandleFunc("GET /model", s.handler.handleModel)
	v1.HandleFunc("GET /dataset", s.handler.handleDatasetSummary)

	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", v1))

	return mux
}

// Handler returns the fully composed handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the server until it fails or a shutdown signal arrives
func (s *Server) Start() error {
	s.logger.Info("starting dashboard server",
		"address", s.httpServer.Addr,
		"environment", s.config.Environment,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-sigCh:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown()
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	timeout := s.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("failed to shutdown server", "error", err)
		return err
	}

	s.logger.Info("server shutdown complete")
	return nil
}
