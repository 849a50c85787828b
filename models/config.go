// Package models defines the shared record types and runtime configuration.
package models

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds runtime configuration. Values come from config.yaml with
// environment variable overrides; a local .env file is honored if present.
type Config struct {
	Env        string `yaml:"env" env:"APP_ENV" env-default:"local"`
	ListenAddr string `yaml:"listen_addr" env:"LISTEN_ADDR" env-default:":8080"`

	DatabasePath string `yaml:"database_path" env:"DATABASE_PATH" env-default:"data/searchrank.db"`
	EventLogPath string `yaml:"event_log_path" env:"EVENT_LOG_PATH" env-default:"data/events"`

	SerpAPIKey string `yaml:"serpapi_key" env:"SERPAPI_KEY"`
	MaxResults int    `yaml:"max_results" env:"MAX_RESULTS" env-default:"20"`

	CrawlWorkers    int           `yaml:"crawl_workers" env:"CRAWL_WORKERS" env-default:"4"`
	CrawlTimeout    time.Duration `yaml:"crawl_timeout" env:"CRAWL_TIMEOUT" env-default:"10s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT" env-default:"30s"`
	CrawlRatePerSec float64       `yaml:"crawl_rate_per_sec" env:"CRAWL_RATE_PER_SEC" env-default:"8"`
}

// LoadConfig reads configuration from the given path, falling back to
// environment variables only when the file does not exist.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read config from environment: %w", err)
		}
	}

	if cfg.MaxResults <= 0 {
		return nil, fmt.Errorf("max_results must be positive, got %d", cfg.MaxResults)
	}
	if cfg.CrawlWorkers <= 0 {
		return nil, fmt.Errorf("crawl_workers must be positive, got %d", cfg.CrawlWorkers)
	}
	return &cfg, nil
}
