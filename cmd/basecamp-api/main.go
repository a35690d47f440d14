package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/aescanero/basecamp/internal/application/monitor"
	"github.com/aescanero/basecamp/internal/auth"
	"github.com/aescanero/basecamp/internal/config"
	"github.com/aescanero/basecamp/internal/logging"
	"github.com/aescanero/basecamp/pkg/adapters/metrics/prometheus"
	"github.com/aescanero/basecamp/pkg/adapters/ratelimit"
	"github.com/aescanero/basecamp/pkg/adapters/ratelimit/memory"
	redislimiter "github.com/aescanero/basecamp/pkg/adapters/ratelimit/redis"
	"github.com/aescanero/basecamp/pkg/adapters/storage/database"
	"github.com/aescanero/basecamp/pkg/api/grpc"
	"github.com/aescanero/basecamp/pkg/api/http"
)

var (
	// Version is set by build flags
	Version   = "dev"
	BuildTime = "unknown"
)

const shutdownTimeout = 30 * time.Second

func main() {
	envFile := flag.String("env-file", ".env", "optional dotenv file; process variables take precedence")
	envExample := flag.Bool("env-example", false, "print every recognized variable with its default and exit")
	flag.Parse()

	if *envExample {
		printEnvExample()
		return
	}

	// Capture the environment once
	raw := config.FromEnviron(os.Environ())
	if *envFile != "" {
		merged, err := raw.WithDotenv(*envFile)
		switch {
		case err == nil:
			raw = merged
		case !errors.Is(err, fs.ErrNotExist):
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
	}

	// Load configuration
	cfg, err := config.Load(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := logging.New(cfg.Logging.LogLevel, cfg.Env())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting basecamp API",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("environment", string(cfg.Env())))

	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	if cfg.Env().IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Metrics
	registry := prom.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metricsCollector := prometheus.NewCollector(registry)
	metricsCollector.SetBuildInfo(Version, string(cfg.Env()))

	// Database
	dbView := cfg.DatabaseView()
	db, err := database.Open(ctx, dbView, logger)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}

	healthMonitor := monitor.NewHealthMonitor(db, metricsCollector, monitor.DefaultInterval, dbView.Timeout(), logger)
	healthMonitor.Start(ctx)

	// Rate limiting
	limiter, closeLimiter, err := newLimiter(ctx, cfg.RateLimitView(), logger)
	if err != nil {
		logger.Fatal("failed to create rate limiter", zap.Error(err))
	}

	// Auth
	tokens, err := auth.NewTokenIssuer(cfg.AuthView())
	if err != nil {
		logger.Fatal("failed to create token issuer", zap.Error(err))
	}
	sessions := auth.NewSessionManager(cfg.AuthView(), cfg.Env())

	// Initialize API servers
	serverView := cfg.ServerView()
	httpServer, err := http.NewServer(&http.Config{
		Server:    serverView,
		CORS:      cfg.CORSView(),
		Limiter:   limiter,
		Tokens:    tokens,
		Sessions:  sessions,
		Health:    healthMonitor,
		Collector: metricsCollector,
		Gatherer:  registry,
		Version:   Version,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal("failed to create HTTP server", zap.Error(err))
	}

	var grpcServer *grpc.Server
	if addr := serverView.GRPCAddr(); addr != "" {
		grpcServer, err = grpc.NewServer(&grpc.Config{
			Addr:   addr,
			Health: healthMonitor,
			Logger: logger,
		})
		if err != nil {
			logger.Fatal("failed to create gRPC server", zap.Error(err))
		}
	}

	// Start servers
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	if grpcServer != nil {
		go func() {
			if err := grpcServer.Start(); err != nil {
				logger.Fatal("gRPC server failed", zap.Error(err))
			}
		}()
	}

	logger.Info("basecamp API started",
		zap.String("http_addr", serverView.Addr()),
		zap.Int("grpc_port", serverView.GRPCPort))

	// Wait for interrupt signal
	<-ctx.Done()
	logger.Info("received shutdown signal")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if grpcServer != nil {
		if err := grpcServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("gRPC server shutdown error", zap.Error(err))
		}
	}

	if err := closeLimiter(); err != nil {
		logger.Error("rate limiter close error", zap.Error(err))
	}

	healthMonitor.Stop()

	if err := db.Close(); err != nil {
		logger.Error("database close error", zap.Error(err))
	}

	logger.Info("basecamp API shut down complete")
}

// newLimiter uses Redis when REDIS_URL is set and in-process counters otherwise
func newLimiter(ctx context.Context, view config.RateLimitView, logger *zap.Logger) (ratelimit.Limiter, func() error, error) {
	if view.RedisURL == "" {
		l := memory.NewLimiter(view.Max, view.Window())
		logger.Info("using in-memory rate limiter",
			zap.Int("max", view.Max),
			zap.Duration("window", view.Window()))
		return l, l.Close, nil
	}

	client, err := redislimiter.Connect(ctx, view.RedisURL)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("using Redis rate limiter",
		zap.Int("max", view.Max),
		zap.Duration("window", view.Window()))
	return redislimiter.NewLimiter(client, view.Max, view.Window(), logger), client.Close, nil
}

func printEnvExample() {
	for _, f := range config.Fields() {
		if f.HasDefault {
			fmt.Printf("%s=%s\n", f.Key, f.Default)
		} else {
			fmt.Printf("# %s=\n", f.Key)
		}
	}
}
