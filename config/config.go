package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Destination string `env:"DESTINATION" envDefault:"Russia"`
	StayNights  int    `env:"STAY_NIGHTS" envDefault:"7"`
	PartySize   int    `env:"PARTY_SIZE" envDefault:"1"`

	// FetchMode selects the page fetcher: "http" or "browser".
	FetchMode         string `env:"FETCH_MODE" envDefault:"http"`
	UserAgent         string `env:"USER_AGENT" envDefault:"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/50.0.2661.75 Safari/537.36"`
	RequestTimeoutSec int    `env:"REQUEST_TIMEOUT_SEC" envDefault:"30"`
	// MaxRetries counts retries after the first attempt.
	MaxRetries       int `env:"MAX_RETRIES" envDefault:"3"`
	RetryBaseDelayMs int `env:"RETRY_BASE_DELAY_MS" envDefault:"2000"`
	// PageRounding is "ceil" or "round" (historical page count behaviour).
	PageRounding string `env:"PAGE_ROUNDING" envDefault:"ceil"`
	// FirstPage is "skip" (crawl offsets 25 ... count×25) or "reuse"
	// (crawl offsets 0 ... (count-1)×25).
	FirstPage string `env:"FIRST_PAGE" envDefault:"skip"`
	ChromeBin string `env:"CHROME_BIN"`

	SnapshotDir  string `env:"SNAPSHOT_DIR" envDefault:"."`
	SnapshotFile string `env:"SNAPSHOT_FILE"`
	ResumeFrom   string `env:"RESUME_FROM"`

	ChartsDir     string `env:"CHARTS_DIR" envDefault:"Charts"`
	MapName       string `env:"MAP_NAME" envDefault:"DisplayAllHotels"`
	ReportCity    string `env:"REPORT_CITY"`
	CSVOutputPath string `env:"CSV_OUTPUT_PATH"`

	// DBDriver is "postgres" or "sqlite3". An empty DBDSN disables the store.
	DBDriver string `env:"DB_DRIVER" envDefault:"postgres"`
	DBDSN    string `env:"DB_DSN"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads the .env file and returns a populated Config struct.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.FetchMode {
	case "http", "browser":
	default:
		return fmt.Errorf("config: FETCH_MODE must be http or browser, got %q", c.FetchMode)
	}
	switch c.PageRounding {
	case "ceil", "round":
	default:
		return fmt.Errorf("config: PAGE_ROUNDING must be ceil or round, got %q", c.PageRounding)
	}
	switch c.FirstPage {
	case "skip", "reuse":
	default:
		return fmt.Errorf("config: FIRST_PAGE must be skip or reuse, got %q", c.FirstPage)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("config: MAX_RETRIES must not be negative, got %d", c.MaxRetries)
	}
	switch c.DBDriver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("config: DB_DRIVER must be postgres or sqlite3, got %q", c.DBDriver)
	}
	if c.PartySize < 1 {
		return fmt.Errorf("config: PARTY_SIZE must be positive, got %d", c.PartySize)
	}
	return nil
}

// RequestTimeout returns the per-request timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

// RetryAttempts returns how many times a fetch is tried in total.
func (c *Config) RetryAttempts() int {
	return c.MaxRetries + 1
}

// RetryBaseDelay returns the first back-off delay.
func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelayMs) * time.Millisecond
}

// StoreEnabled reports whether a relational store is configured.
func (c *Config) StoreEnabled() bool {
	return c.DBDSN != ""
}
