package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/meowrun/platform/internal/infra"
	"github.com/meowrun/platform/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("outbox consumer failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("outbox-consumer connected to postgres")

	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer producer.Close()

	poller := infra.NewOutboxPoller(pool, repository.NewOutboxRepository(), producer, cfg.KafkaTopic, logger)

	if s := os.Getenv("OUTBOX_POLL_INTERVAL"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			poller.Interval = d
		}
	}
	if s := os.Getenv("OUTBOX_BATCH_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			poller.BatchSize = n
		}
	}

	logger.Info("outbox-consumer starting",
		"poll_interval", poller.Interval,
		"batch_size", poller.BatchSize,
		"kafka_enabled", cfg.KafkaEnabled,
		"topic", cfg.KafkaTopic,
	)

	poller.Run(ctx)
	logger.Info("outbox-consumer shutting down")
	return nil
}
