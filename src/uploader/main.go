package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/gif-pipeline/src/internal/config"
	"github.com/gif-pipeline/src/internal/pipeline"
	"github.com/gif-pipeline/src/internal/telemetry"
)

func main() {
	_ = godotenv.Load()

	logger, err := telemetry.NewLogger()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	if err := cfg.ValidateUpload(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	if err := os.MkdirAll(cfg.UploadCacheDir, 0755); err != nil {
		logger.Fatal("failed to create directory", zap.String("dir", cfg.UploadCacheDir), zap.Error(err))
	}

	publisher := pipeline.NewPublisher(cfg, logger)
	if _, err := publisher.Run(context.Background()); err != nil {
		logger.Fatal("upload pipeline failed", zap.Error(err))
	}
}
