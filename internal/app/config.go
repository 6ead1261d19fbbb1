package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/odyssey-erp/marketplace-reports/internal/platform/cache"
)

// PDF backends selectable with PDF_BACKEND.
const (
	BackendGotenberg = "gotenberg"
	BackendRod       = "rod"
	BackendChromedp  = "chromedp"
)

// Config holds runtime configuration for the report service and worker.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"90s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"75s"`
	RateLimit         int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"60"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	// PGDSN enables the export ledger when set.
	PGDSN string `envconfig:"PG_DSN"`

	// RedisAddr accepts a comma-separated list for cluster deployments.
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	GotenbergURL string `envconfig:"GOTENBERG_URL" default:"http://127.0.0.1:3000"`

	ReportProfilePath string `envconfig:"REPORT_PROFILE_PATH"`

	PDFBackend     string        `envconfig:"PDF_BACKEND" default:"gotenberg"`
	ChromeBin      string        `envconfig:"CHROME_BIN"`
	ChromeURL      string        `envconfig:"CHROME_URL"`
	CaptureTimeout time.Duration `envconfig:"CAPTURE_TIMEOUT" default:"60s"`
	CaptureScale   float64       `envconfig:"CAPTURE_SCALE" default:"2"`

	ExportStorageDir  string        `envconfig:"EXPORT_STORAGE_DIR" default:"./var/exports"`
	ExportRetention   time.Duration `envconfig:"EXPORT_RETENTION" default:"72h"`
	WorkerConcurrency int           `envconfig:"WORKER_CONCURRENCY" default:"2"`
	// WorkerMetricsAddr serves the worker's /metrics when set.
	WorkerMetricsAddr string `envconfig:"WORKER_METRICS_ADDR" default:":9091"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	c.PDFBackend = strings.ToLower(strings.TrimSpace(c.PDFBackend))
	switch c.PDFBackend {
	case BackendGotenberg, BackendRod, BackendChromedp:
	default:
		return fmt.Errorf("config: unknown PDF_BACKEND %q", c.PDFBackend)
	}
	if c.CaptureTimeout <= 0 {
		return fmt.Errorf("config: CAPTURE_TIMEOUT must be positive")
	}
	if c.CaptureScale <= 0 || c.CaptureScale > 4 {
		return fmt.Errorf("config: CAPTURE_SCALE must be in (0, 4]")
	}
	if strings.TrimSpace(c.ExportStorageDir) == "" {
		return fmt.Errorf("config: EXPORT_STORAGE_DIR must be set")
	}
	return nil
}

// Redis returns the connection settings shared by the export store and the job queue.
func (c *Config) Redis() cache.Options {
	return cache.Options{Addrs: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB}
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
