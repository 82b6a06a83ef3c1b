package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"serverless-todo/backend/internal/app"
	"serverless-todo/backend/internal/config"
	"serverless-todo/backend/internal/logging"
	"serverless-todo/backend/internal/middleware"
	"serverless-todo/backend/internal/monitoring"
	"serverless-todo/backend/internal/server"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	logger, err := logging.Setup(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("falling back to info log level", "error", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	for name, check := range application.Checks {
		monitoring.RegisterHealthCheck(name, monitoring.HealthCheckFunc(check))
	}
	if application.CacheMetrics != nil {
		monitoring.RegisterSource("cache", func() interface{} {
			return application.CacheMetrics.Snapshot()
		})
	}

	opts := server.Options{
		Auth: middleware.AuthConfig{
			Secret: cfg.Auth.JWTSecret,
			Issuer: cfg.Auth.JWTIssuer,
		},
		Logger: logger,
	}
	if cfg.RateLimit.Enabled {
		opts.RateLimit = &middleware.RateLimitConfig{
			RequestsPerMinute: cfg.RateLimit.RequestsPerMin,
			Burst:             cfg.RateLimit.BurstSize,
			CleanupInterval:   cfg.RateLimit.CleanupInterval,
		}
	}

	return server.Run(ctx, cfg.Server, server.NewRouter(application.Handler, opts), logger)
}
