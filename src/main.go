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

	for _, dir := range []string{cfg.VideoDir, cfg.GifDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("failed to create directory", zap.String("dir", dir), zap.Error(err))
		}
	}

	converter := pipeline.NewConverter(cfg, logger)
	if _, err := converter.Run(context.Background()); err != nil {
		logger.Fatal("convert pipeline failed", zap.Error(err))
	}
}
