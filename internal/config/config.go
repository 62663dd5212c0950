// Package config handles application configuration.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration. It is loaded once at startup
// and passed into components; nothing below internal/config reads the
// process environment directly.
type Config struct {
	// Server settings
	Port        int
	BaseURL     string
	CORSOrigins []string

	// Database (review cache + stored reports)
	DatabaseURL string
	CacheTTL    time.Duration // 0 = cache entries never expire

	// Scraping-job service
	ScrapeAPIURL   string // base URL, e.g. https://api.scrapehub.example/v2
	ScrapeAPIToken string
	PollInterval   time.Duration // delay between status polls
	MaxPolls       int           // default poll budget (10 minutes at 10s)
	MapsMaxPolls   int           // maps-listing runs get a tighter budget

	// Text-analysis service (OpenAI-compatible chat completions)
	AnalysisAPIURL string
	AnalysisAPIKey string
	AnalysisModel  string

	// Per-review analysis cost controls
	ReviewAnalysisCap int           // max reviews analyzed individually
	AnalysisBatchSize int           // reviews per batch
	InterReviewDelay  time.Duration // pause between calls within a batch
	InterBatchDelay   time.Duration // pause between batches
	AnalysisRetries   int           // attempts per call including the first
	AnalysisRPS       float64       // token-bucket refill rate for the analysis client

	// Pipeline
	PipelineTimeout time.Duration // end-to-end cap per analyze request

	// IdleTimeout stops the server after this long without requests
	// (scale-to-zero). 0 disables idle shutdown.
	IdleTimeout time.Duration

	// Report archive (S3-compatible object storage)
	StorageEnabled   bool
	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string
	StorageRegion    string
	ArchiveInterval  time.Duration // how often the worker sweeps for unarchived reports
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"http://localhost:3000"}),

		DatabaseURL: getEnv("DATABASE_URL", "file:reviewlens.db?_journal=WAL&_timeout=5000"),
		CacheTTL:    getEnvDuration("CACHE_TTL", 0),

		ScrapeAPIURL:   getEnv("SCRAPE_API_URL", "https://api.scrapehub.dev/v2"),
		ScrapeAPIToken: getEnv("SCRAPE_API_TOKEN", ""),
		PollInterval:   getEnvDuration("SCRAPE_POLL_INTERVAL", 10*time.Second),
		MaxPolls:       getEnvInt("SCRAPE_MAX_POLLS", 60),
		MapsMaxPolls:   getEnvInt("SCRAPE_MAPS_MAX_POLLS", 30),

		AnalysisAPIURL: getEnv("ANALYSIS_API_URL", "https://api.openai.com/v1/chat/completions"),
		AnalysisAPIKey: getEnv("ANALYSIS_API_KEY", ""),
		AnalysisModel:  getEnv("ANALYSIS_MODEL", "gpt-4o-mini"),

		ReviewAnalysisCap: getEnvInt("REVIEW_ANALYSIS_CAP", 20),
		AnalysisBatchSize: getEnvInt("ANALYSIS_BATCH_SIZE", 5),
		InterReviewDelay:  getEnvDuration("ANALYSIS_REVIEW_DELAY", 1*time.Second),
		InterBatchDelay:   getEnvDuration("ANALYSIS_BATCH_DELAY", 3*time.Second),
		AnalysisRetries:   getEnvInt("ANALYSIS_RETRIES", 3),
		AnalysisRPS:       getEnvFloat("ANALYSIS_RPS", 1.0),

		PipelineTimeout: getEnvDuration("PIPELINE_TIMEOUT", 10*time.Minute),
		IdleTimeout:     getEnvDuration("IDLE_TIMEOUT", 0),

		StorageEndpoint:  getEnv("AWS_ENDPOINT_URL_S3", ""),
		StorageAccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		StorageSecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		StorageBucket:    getEnvWithFallback("BUCKET_NAME", "STORAGE_BUCKET", ""),
		StorageRegion:    getEnv("AWS_REGION", "auto"),
		ArchiveInterval:  getEnvDuration("ARCHIVE_INTERVAL", 1*time.Minute),
	}

	// Enable the report archive only when a bucket is fully configured
	cfg.StorageEnabled = cfg.StorageBucket != "" && cfg.StorageEndpoint != ""

	return cfg, nil
}

// HasScrapeCredentials returns true if the scraping-job service is usable.
// Fetchers that need it fail with a configuration error when this is false.
func (c *Config) HasScrapeCredentials() bool {
	return c.ScrapeAPIToken != ""
}

// HasAnalysisCredentials returns true if the text-analysis service is usable.
func (c *Config) HasAnalysisCredentials() bool {
	return c.AnalysisAPIKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func getEnvWithFallback(primary, fallback, defaultValue string) string {
	if value := os.Getenv(primary); value != "" {
		return value
	}
	if value := os.Getenv(fallback); value != "" {
		return value
	}
	return defaultValue
}
