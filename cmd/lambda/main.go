package main

import (
	"context"
	"log/slog"
	"os"

	"serverless-todo/backend/internal/app"
	"serverless-todo/backend/internal/config"
	"serverless-todo/backend/internal/handlers"
	"serverless-todo/backend/internal/logging"

	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.Setup(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("falling back to info log level", "error", err)
	}

	application, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	lambda.Start(handlers.NewAPIGatewayRouter(application.Handler).Handle)
}
