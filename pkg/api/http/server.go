package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/aescanero/basecamp/internal/application/monitor"
	"github.com/aescanero/basecamp/internal/auth"
	"github.com/aescanero/basecamp/internal/config"
	metrics "github.com/aescanero/basecamp/pkg/adapters/metrics/prometheus"
	"github.com/aescanero/basecamp/pkg/adapters/ratelimit"
)

// HealthReporter reports the result of the last health check
type HealthReporter interface {
	GetStatus() monitor.HealthStatus
}

// Server represents the HTTP API server
type Server struct {
	router   *gin.Engine
	server   *http.Server
	health   HealthReporter
	tokens   *auth.TokenIssuer
	sessions *auth.SessionManager
	env      config.Env
	version  string
	started  time.Time
	logger   *zap.Logger
}

// Config holds HTTP server dependencies
type Config struct {
	Server    config.ServerView
	CORS      config.CORSView
	Limiter   ratelimit.Limiter
	Tokens    *auth.TokenIssuer
	Sessions  *auth.SessionManager
	Health    HealthReporter
	Collector *metrics.Collector
	Gatherer  prometheus.Gatherer
	Version   string
	Logger    *zap.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *Config) (*Server, error) {
	corsHandler, err := corsMiddleware(cfg.CORS)
	if err != nil {
		return nil, err
	}

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	router := gin.New()
	// Forwarding headers are honored only from the configured proxies.
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}
	router.Use(recovery(cfg.Logger))
	router.Use(requestID())
	router.Use(requestLogger(cfg.Logger, cfg.Collector))
	router.Use(securityHeaders(cfg.Server.Env))
	router.Use(corsHandler)
	if cfg.Limiter != nil {
		router.Use(rateLimit(cfg.Limiter, cfg.Collector, cfg.Logger, "/health", "/metrics"))
	}

	s := &Server{
		router:   router,
		health:   cfg.Health,
		tokens:   cfg.Tokens,
		sessions: cfg.Sessions,
		env:      cfg.Server.Env,
		version:  cfg.Version,
		started:  time.Now(),
		logger:   cfg.Logger,
	}

	s.setupRoutes(gatherer)

	s.server = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// setupRoutes configures API routes
func (s *Server) setupRoutes(gatherer prometheus.Gatherer) {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("", s.handleInfo)
		v1.GET("/me", auth.RequireAuth(s.tokens, s.sessions), s.handleMe)
		v1.POST("/session", auth.RequireAuth(s.tokens, nil), s.handleCreateSession)
		v1.DELETE("/session", s.handleDeleteSession)
	}

	s.router.NoRoute(s.handleNotFound)
}

// Handler returns the server's root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server",
		zap.String("addr", s.server.Addr),
		zap.String("environment", string(s.env)))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server shut down complete")
	return nil
}
