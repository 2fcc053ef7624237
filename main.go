package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"airmet/internal/config"
	"airmet/internal/fetchers"
	"airmet/internal/logger"
	"airmet/internal/pipeline"
	"airmet/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Global().Fatalf("Failed to load configuration: %v", err)
	}

	level := logger.ParseLogLevel(cfg.LogLevel)
	if level == -1 {
		level = logger.INFO
	}
	format := logger.ParseLogFormat(cfg.LogFormat)
	if format == -1 {
		format = logger.TextFormat
	}
	log := logger.New(logger.Config{Level: level, Format: format})
	logger.SetGlobal(log)

	log.Infof("Starting airmet for %s (%s to %s), storage mode %s",
		cfg.City, cfg.StartDate, cfg.EndDate, cfg.StorageMode)

	store, err := storage.NewStorageClient(ctx, storage.DeploymentMode(cfg.StorageMode), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	fetcher := fetchers.NewDataFetcher(log)

	if err := pipeline.New(cfg, store, fetcher, log).Run(ctx); err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}

	os.Exit(0)
}
