package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finsight/internal/advisor"
	"finsight/internal/cache"
	"finsight/internal/config"
	"finsight/internal/core"
	"finsight/internal/event"
	apphttp "finsight/internal/http"
	"finsight/internal/insights"
	"finsight/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

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

	// AMQP is optional: without a broker writes simply skip publishing.
	var events *event.Client
	if cfg.AMQPURL != "" {
		events, err = event.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer events.Close()
		logger.Info("AMQP event publishing enabled", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	var adv insights.Advisor
	switch cfg.AdvisorStrategy {
	case "gemini":
		gemini, err := advisor.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("Failed to initialize Gemini advisor", "error", err)
			os.Exit(1)
		}
		adv = gemini
		logger.Info("Gemini advisor enabled", "model", cfg.GeminiModel)
	default:
		adv = advisor.NewRuleBased()
		logger.Info("Rule-based advisor enabled")
	}

	insightCache := cache.New[core.Insights](cfg.ComputeTimeout)
	cacheManager := cache.NewManager()
	cacheManager.Register(insightCache)
	cacheManager.StartCleanup(cfg.CacheCleanup)
	defer cacheManager.Stop()

	service := insights.NewService(repo, repo, adv, insightCache, benchmarks, cfg.InsightTTL)

	srv := apphttp.NewServer(":"+cfg.Port, service, repo, events)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting finsight server",
		"port", cfg.Port,
		"advisor", cfg.AdvisorStrategy,
		"insight_ttl", cfg.InsightTTL.String())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
