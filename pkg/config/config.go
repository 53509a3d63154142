package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default endpoints and tuning. The demo environment is the default so
// a missing KALSHI_BASE_URL can never place real-money orders.
const (
	DefaultBaseURL     = "https://demo-api.kalshi.co/trade-api/v2"
	DefaultListenAddr  = ":8787"
	DefaultDataDir     = "data"
	DefaultMaxAttempts = 5
	DefaultBaseDelayMS = 250
	DefaultTimeoutSec  = 30
)

// Config is the resolved application configuration. Credentials come
// from the environment only; the YAML file carries non-secret settings.
// Resolution order is environment, then file, then defaults.
type Config struct {
	// APIKeyID and PrivateKeyPath identify the venue API key. Set via
	// KALSHI_API_KEY_ID and KALSHI_PRIVATE_KEY_PATH.
	APIKeyID       string
	PrivateKeyPath string

	// BaseURL is the REST base, demo by default.
	BaseURL string

	LogLevel string
	LogFile  string

	// Retry and transport tuning for the client.
	MaxAttempts int
	BaseDelay   time.Duration
	Timeout     time.Duration

	// RateLimitTier selects the client-side request budget: "basic",
	// "advanced", or "none".
	RateLimitTier string

	// DataDir anchors the local stores; JournalPath and SnapshotDir
	// default under it.
	DataDir     string
	JournalPath string
	SnapshotDir string

	// ListenAddr is the dashboard bind address.
	ListenAddr string
}

// fileConfig is the YAML schema. Credentials are deliberately absent;
// they never live in the file.
type fileConfig struct {
	BaseURL       string `yaml:"base_url"`
	LogLevel      string `yaml:"log_level"`
	LogFile       string `yaml:"log_file"`
	MaxAttempts   int    `yaml:"max_attempts"`
	BaseDelayMS   int    `yaml:"base_delay_ms"`
	TimeoutSec    int    `yaml:"timeout_seconds"`
	RateLimitTier string `yaml:"rate_limit_tier"`
	DataDir       string `yaml:"data_dir"`
	JournalPath   string `yaml:"journal_path"`
	SnapshotDir   string `yaml:"snapshot_dir"`
	ListenAddr    string `yaml:"listen_addr"`
}

// Load resolves the configuration. A .env file in the working directory
// is applied best-effort first, then the optional YAML file at path
// (empty means no file), then environment overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var file fileConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		APIKeyID:       os.Getenv("KALSHI_API_KEY_ID"),
		PrivateKeyPath: os.Getenv("KALSHI_PRIVATE_KEY_PATH"),
		BaseURL:        firstNonEmpty(os.Getenv("KALSHI_BASE_URL"), file.BaseURL, DefaultBaseURL),
		LogLevel:       firstNonEmpty(os.Getenv("LOG_LEVEL"), file.LogLevel, "info"),
		LogFile:        firstNonEmpty(os.Getenv("LOG_FILE"), file.LogFile, "logs/kalshi.log"),
		MaxAttempts:    intOrDefault(parseIntEnv("KALSHI_MAX_ATTEMPTS", file.MaxAttempts), DefaultMaxAttempts),
		BaseDelay:      time.Duration(intOrDefault(parseIntEnv("KALSHI_BASE_DELAY_MS", file.BaseDelayMS), DefaultBaseDelayMS)) * time.Millisecond,
		Timeout:        time.Duration(intOrDefault(parseIntEnv("KALSHI_TIMEOUT_SECONDS", file.TimeoutSec), DefaultTimeoutSec)) * time.Second,
		RateLimitTier:  firstNonEmpty(os.Getenv("KALSHI_RATE_LIMIT_TIER"), file.RateLimitTier, "basic"),
		DataDir:        firstNonEmpty(os.Getenv("KALSHI_DATA_DIR"), file.DataDir, DefaultDataDir),
		JournalPath:    firstNonEmpty(file.JournalPath, ""),
		SnapshotDir:    firstNonEmpty(file.SnapshotDir, ""),
		ListenAddr:     firstNonEmpty(os.Getenv("KALSHI_LISTEN_ADDR"), file.ListenAddr, DefaultListenAddr),
	}
	if cfg.JournalPath == "" {
		cfg.JournalPath = filepath.Join(cfg.DataDir, "journal.db")
	}
	if cfg.SnapshotDir == "" {
		cfg.SnapshotDir = filepath.Join(cfg.DataDir, "snapshots")
	}
	return cfg, nil
}

// Validate checks that the credential settings are usable. Commands that
// never touch the venue (journal, snapshots) skip this.
func (c *Config) Validate() error {
	if c.APIKeyID == "" {
		return fmt.Errorf("KALSHI_API_KEY_ID is not set")
	}
	if c.PrivateKeyPath == "" {
		return fmt.Errorf("KALSHI_PRIVATE_KEY_PATH is not set")
	}
	if _, err := os.Stat(c.PrivateKeyPath); err != nil {
		return fmt.Errorf("private key file %s: %w", c.PrivateKeyPath, err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// parseIntEnv reads an integer environment variable, falling back to
// fromFile when the variable is absent or malformed.
func parseIntEnv(key string, fromFile int) int {
	value := os.Getenv(key)
	if value == "" {
		return fromFile
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fromFile
	}
	return parsed
}

func intOrDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
