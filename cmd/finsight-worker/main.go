package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"finsight/internal/advisor"
	"finsight/internal/cache"
	"finsight/internal/config"
	"finsight/internal/core"
	"finsight/internal/event"
	"finsight/internal/insights"
	"finsight/internal/storage"
	"finsight/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting finsight-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	benchmarks, err := config.LoadBenchmarks(cfg.BenchmarksFile)
	if err != nil {
		logger.Error("Failed to load benchmark table", "error", err, "file", cfg.BenchmarksFile)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// The worker stays rule-based even when the API serves Gemini text: its
	// job is recomputation and over-benchmark alerting, not narrative.
	insightCache := cache.New[core.Insights](cfg.ComputeTimeout)
	service := insights.NewService(repo, repo, advisor.NewRuleBased(), insightCache, benchmarks, cfg.InsightTTL)
	insightWorker := worker.NewInsightWorker(service, repo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Periodic sweep over all tenants, also the safety net for lost events.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.WarmSchedule, func() {
		if err := insightWorker.SweepCurrentMonth(ctx); err != nil {
			logger.Error("Insight sweep failed", "error", err)
		}
	}); err != nil {
		logger.Error("Invalid warm schedule", "schedule", cfg.WarmSchedule, "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()
	logger.Info("Scheduled insight sweep", "schedule", cfg.WarmSchedule)

	// Consume transaction events when a broker is configured.
	if cfg.AMQPURL != "" {
		events, err := event.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer events.Close()

		go func() {
			err := events.ConsumeTransactionChanged(ctx, func(msg *event.TransactionChanged) error {
				return insightWorker.HandleTransactionChanged(ctx, msg)
			})
			if err != nil && ctx.Err() == nil {
				logger.Error("Event consumption stopped", "error", err)
				cancel()
			}
		}()
		logger.Info("Consuming transaction events", "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - running on schedule only")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
	}

	cancel()
	logger.Info("Worker stopped gracefully")
}
