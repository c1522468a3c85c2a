package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server exposes dataset generation over HTTP.
type Server struct {
	httpServer    *http.Server
	metricsServer *http.Server
	router        *mux.Router
	logger        *logrus.Logger
	config        *Config
	handlers      *Handlers
	metrics       *serverMetrics
}

type serverMetrics struct {
	registry         *prometheus.Registry
	recordsGenerated prometheus.Counter
	recordsRequested prometheus.Counter
	requestErrors    prometheus.Counter
}

func newServerMetrics() *serverMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &serverMetrics{
		registry: registry,
		recordsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name: "gpref_records_generated_total",
			Help: "Total preference records admitted to generated datasets.",
		}),
		recordsRequested: factory.NewCounter(prometheus.CounterOpts{
			Name: "gpref_generation_requests_total",
			Help: "Total dataset generation requests received.",
		}),
		requestErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "gpref_request_errors_total",
			Help: "Total requests that failed.",
		}),
	}
}

// NewServer creates a new HTTP server instance
func NewServer(config *Config, logger *logrus.Logger) (*Server, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if logger == nil {
		logger = logrus.New()
	}

	metrics := newServerMetrics()
	handlers := NewHandlers(logger, metrics)

	server := &Server{
		router:   mux.NewRouter(),
		logger:   logger,
		config:   config,
		handlers: handlers,
		metrics:  metrics,
	}

	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      server.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	if config.EnableMetrics {
		server.setupMetricsServer()
	}

	return server, nil
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handlers.Health).Methods("GET")

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/generate", s.handlers.Generate).Methods("POST")
	api.HandleFunc("/metrics", s.handlers.EstimateMetrics).Methods("POST")
}

func (s *Server) setupMetricsServer() {
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	s.metricsServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.config.Host, s.config.MetricsPort),
		Handler: metricsMux,
	}
}

// Start starts the HTTP server and, when enabled, the metrics server.
func (s *Server) Start() error {
	if s.metricsServer != nil {
		go func() {
			s.logger.WithField("address", s.metricsServer.Addr).Info("Starting metrics server")
			if err := s.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				s.logger.WithError(err).Error("Metrics server failed")
			}
		}()
	}

	s.logger.WithField("address", s.httpServer.Addr).Info("Starting HTTP server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully stops both servers.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(ctx); err != nil {
			s.logger.WithError(err).Warn("Metrics server shutdown failed")
		}
	}

	s.logger.Info("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
