package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Fetch settings
	SourcesConfigPath string
	MaxPostsPerSource int
	FetchConcurrency  int // parallel source fetches
	RequestTimeout    time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
	FeedCacheTTL      time.Duration // skip re-fetching a feed inside this window
	DailyFetchBudget  int           // max requests per source per day (0 = unlimited)

	// Personalization settings
	SaveDirectory string

	// App settings
	CronSchedule string // empty = run once and exit
	Debug        bool
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		SourcesConfigPath: "configs/sources.yaml",
		MaxPostsPerSource: 10,
		FetchConcurrency:  5,
		RequestTimeout:    30 * time.Second,
		RetryAttempts:     3,
		RetryDelay:        5 * time.Second,
		FeedCacheTTL:      15 * time.Minute,
		DailyFetchBudget:  0,
		SaveDirectory:     "saved_posts",
	}

	// Load from environment
	cfg.SourcesConfigPath = getEnvOrDefault("SOURCES_CONFIG_PATH", cfg.SourcesConfigPath)
	cfg.SaveDirectory = getEnvOrDefault("SAVE_DIRECTORY", cfg.SaveDirectory)
	cfg.CronSchedule = os.Getenv("CRON_SCHEDULE")

	if v := os.Getenv("MAX_POSTS_PER_SOURCE"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.MaxPostsPerSource = val
		}
	}
	if v := os.Getenv("FETCH_CONCURRENCY"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.FetchConcurrency = val
		}
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RequestTimeout = time.Duration(val) * time.Second
		}
	}
	cfg.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)
	if v := os.Getenv("RETRY_DELAY_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RetryDelay = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("FEED_CACHE_TTL_MINUTES"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val >= 0 {
			cfg.FeedCacheTTL = time.Duration(val) * time.Minute
		}
	}
	cfg.DailyFetchBudget = getEnvIntOrDefault("DAILY_FETCH_BUDGET", cfg.DailyFetchBudget)

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.SaveDirectory == "" {
		return fmt.Errorf("SAVE_DIRECTORY must not be empty")
	}
	if c.SourcesConfigPath == "" {
		return fmt.Errorf("SOURCES_CONFIG_PATH must not be empty")
	}
	if c.MaxPostsPerSource <= 0 {
		return fmt.Errorf("MAX_POSTS_PER_SOURCE must be positive")
	}
	if c.RetryAttempts <= 0 {
		return fmt.Errorf("RETRY_ATTEMPTS must be positive")
	}
	return nil
}
