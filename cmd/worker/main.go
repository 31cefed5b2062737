package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/mmynk/chama/internal/config"
	"github.com/mmynk/chama/internal/storage/sqlite"
	"github.com/mmynk/chama/internal/worker"
	"github.com/mmynk/chama/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Worker stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if cfg.RedisAddr == "" {
		return errors.New("REDIS_ADDR is required to run the worker")
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	sender := worker.NewSender(cfg.SMTP)
	if !cfg.SMTP.Enabled() {
		slog.Warn("SMTP is not configured, notifications will only be logged")
	}

	srv := worker.NewServer(cfg.RedisAddr, 10)
	mux := worker.NewServeMux(worker.NewWorker(store, sender))

	slog.Info("Starting notification worker", "redis", cfg.RedisAddr)
	return srv.Run(mux)
}
