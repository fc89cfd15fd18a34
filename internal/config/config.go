// Package config parses companion client configuration from flags and
// environment variables.
package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config carries the client-wide settings. The pairing delays are
// tunable heuristics, not protocol values.
type Config struct {
	DataDir        string
	LogLevel       string
	SettleWindow   time.Duration
	ScanRetryDelay time.Duration
}

const defaultLogLevel = "info"
const defaultSettleWindow = time.Second
const defaultScanRetryDelay = 2 * time.Second

// ParseFlags parses the shared flags from args and returns the remaining
// positional arguments.
func ParseFlags(name string, args []string) (Config, []string, error) {
	cfg := Config{
		DataDir:        envOrDefault("COMPANION_DATA_DIR", defaultDataDir()),
		LogLevel:       envOrDefault("COMPANION_LOG_LEVEL", defaultLogLevel),
		SettleWindow:   envDurationOrDefault("COMPANION_SETTLE_WINDOW", defaultSettleWindow),
		ScanRetryDelay: envDurationOrDefault("COMPANION_SCAN_RETRY_DELAY", defaultScanRetryDelay),
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Directory for the settings database and key material")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug|info|warn|error")
	fs.DurationVar(&cfg.SettleWindow, "settle-window", cfg.SettleWindow, "Wait after a connection request before declaring provisional success")
	fs.DurationVar(&cfg.ScanRetryDelay, "scan-retry-delay", cfg.ScanRetryDelay, "Suspension after a rejected scan before scanning resumes")
	if err := fs.Parse(args); err != nil {
		return cfg, nil, err
	}

	cfg.DataDir = strings.TrimSpace(cfg.DataDir)
	if cfg.DataDir == "" {
		return cfg, nil, errors.New("missing --data-dir or COMPANION_DATA_DIR")
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return cfg, nil, errors.New("log level must be one of: debug, info, warn, error")
	}
	if cfg.SettleWindow <= 0 {
		return cfg, nil, errors.New("settle window must be > 0")
	}
	if cfg.ScanRetryDelay <= 0 {
		return cfg, nil, errors.New("scan retry delay must be > 0")
	}

	return cfg, fs.Args(), nil
}

// DBPath is the settings database location inside the data dir.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "companion.db")
}

// SealKeyPath is the token sealing key location inside the data dir.
func (c Config) SealKeyPath() string {
	return filepath.Join(c.DataDir, "seal.key")
}

func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".companion"
	}
	return filepath.Join(base, "openclaw-companion")
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDurationOrDefault(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
