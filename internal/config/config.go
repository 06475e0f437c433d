package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Insights
	BenchmarksFile string
	InsightTTL     time.Duration
	ComputeTimeout time.Duration
	CacheCleanup   time.Duration

	// Advisor
	AdvisorStrategy string // "rules" or "gemini"
	GeminiAPIKey    string
	GeminiModel     string

	// Worker
	WarmSchedule string // cron spec for the periodic insight sweep
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/finsight.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finsight"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "transaction_events"),

		BenchmarksFile: getEnv("BENCHMARKS_FILE", ""),
		InsightTTL:     getEnvDuration("INSIGHT_TTL", 10*time.Minute),
		ComputeTimeout: getEnvDuration("COMPUTE_TIMEOUT", 15*time.Second),
		CacheCleanup:   getEnvDuration("CACHE_CLEANUP_INTERVAL", 5*time.Minute),

		AdvisorStrategy: getEnv("ADVISOR_STRATEGY", "rules"),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", ""),

		WarmSchedule: getEnv("WARM_SCHEDULE", "@hourly"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	}

	switch c.AdvisorStrategy {
	case "rules":
	case "gemini":
		if c.GeminiAPIKey == "" {
			errors = append(errors, "GEMINI_API_KEY is required when ADVISOR_STRATEGY is 'gemini'")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid advisor strategy '%s': must be 'rules' or 'gemini'", c.AdvisorStrategy))
	}

	if c.InsightTTL <= 0 {
		errors = append(errors, "insight TTL must be positive")
	}
	if c.ComputeTimeout < 0 {
		errors = append(errors, "compute timeout cannot be negative")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
