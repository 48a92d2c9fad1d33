// Package api exposes the query service over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"fantoken-intel/internal/observability"
	"fantoken-intel/internal/query"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RateRPS         int
	RateBurst       int
}

// DefaultServerConfig returns production defaults for the given address.
func DefaultServerConfig(addr string) *ServerConfig {
	return &ServerConfig{
		Addr:            addr,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		RateRPS:         10,
		RateBurst:       20,
	}
}

// Server is the HTTP API server.
type Server struct {
	router     *mux.Router
	httpServer *http.Server
	queries    *query.Service
	logger     *logrus.Logger
	config     *ServerConfig
}

// NewServer creates an API server over the query service.
func NewServer(config *ServerConfig, queries *query.Service, logger *logrus.Logger) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		queries: queries,
		logger:  logger,
		config:  config,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	rateLimiter := NewRateLimiter(s.config.RateRPS, s.config.RateBurst)

	s.router.Use(LoggingMiddleware(s.logger))
	s.router.Use(RecoveryMiddleware(s.logger))

	// Health and metrics bypass the rate limiter.
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", observability.Handler()).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(RateLimitMiddleware(rateLimiter))

	api.HandleFunc("/tokens", s.handleTokens).Methods("GET")
	api.HandleFunc("/tokens/{symbol}", s.handleToken).Methods("GET")
	api.HandleFunc("/tokens/{symbol}/bucket", s.handleLatestBucket).Methods("GET")
	api.HandleFunc("/tokens/{symbol}/buckets", s.handleBucketHistory).Methods("GET")
	api.HandleFunc("/tokens/{symbol}/score", s.handleLatestScore).Methods("GET")
	api.HandleFunc("/tokens/{symbol}/scores", s.handleScoreHistory).Methods("GET")
	api.HandleFunc("/tokens/{symbol}/correlations", s.handleCorrelations).Methods("GET")
	api.HandleFunc("/scores/grade/{grade}", s.handleScoresByGrade).Methods("GET")
	api.HandleFunc("/alerts", s.handleAlerts).Methods("GET")

	s.httpServer = &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// Handler exposes the router, used by handler tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("api server started")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()
	s.logger.Info("api server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "fantoken-intel",
	})
}
