package config

import (
	"testing"
	"time"
)

func TestParseFlagsDefaults(t *testing.T) {
	t.Setenv("COMPANION_DATA_DIR", "")
	t.Setenv("COMPANION_LOG_LEVEL", "")
	t.Setenv("COMPANION_SETTLE_WINDOW", "")
	t.Setenv("COMPANION_SCAN_RETRY_DELAY", "")

	cfg, rest, err := ParseFlags("test", nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("expected default log level info, got %q", cfg.LogLevel)
	}
	if cfg.SettleWindow != time.Second {
		t.Fatalf("expected 1s settle window, got %s", cfg.SettleWindow)
	}
	if cfg.ScanRetryDelay != 2*time.Second {
		t.Fatalf("expected 2s scan retry delay, got %s", cfg.ScanRetryDelay)
	}
	if cfg.DataDir == "" {
		t.Fatal("expected a default data dir")
	}
	if len(rest) != 0 {
		t.Fatalf("expected no positional args, got %v", rest)
	}
}

func TestParseFlagsOverrides(t *testing.T) {
	t.Setenv("COMPANION_DATA_DIR", "")

	cfg, rest, err := ParseFlags("test", []string{
		"--data-dir", "/tmp/companion",
		"--log-level", "DEBUG",
		"--settle-window", "250ms",
		"--scan-retry-delay", "5s",
		"positional",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataDir != "/tmp/companion" {
		t.Fatalf("got data dir %q", cfg.DataDir)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level must be normalized, got %q", cfg.LogLevel)
	}
	if cfg.SettleWindow != 250*time.Millisecond {
		t.Fatalf("got settle window %s", cfg.SettleWindow)
	}
	if cfg.ScanRetryDelay != 5*time.Second {
		t.Fatalf("got scan retry delay %s", cfg.ScanRetryDelay)
	}
	if len(rest) != 1 || rest[0] != "positional" {
		t.Fatalf("got positional args %v", rest)
	}
}

func TestParseFlagsEnvFallback(t *testing.T) {
	t.Setenv("COMPANION_DATA_DIR", "/var/lib/companion")
	t.Setenv("COMPANION_SETTLE_WINDOW", "3s")

	cfg, _, err := ParseFlags("test", nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataDir != "/var/lib/companion" {
		t.Fatalf("got data dir %q", cfg.DataDir)
	}
	if cfg.SettleWindow != 3*time.Second {
		t.Fatalf("got settle window %s", cfg.SettleWindow)
	}
}

func TestParseFlagsValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad log level", []string{"--log-level", "loud"}},
		{"zero settle window", []string{"--settle-window", "0s"}},
		{"negative scan retry", []string{"--scan-retry-delay", "-1s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := ParseFlags("test", tt.args); err == nil {
				t.Fatalf("expected parse error for args: %v", tt.args)
			}
		})
	}
}

func TestParseFlagsBadEnvDurationFallsBack(t *testing.T) {
	t.Setenv("COMPANION_SCAN_RETRY_DELAY", "soon")

	cfg, _, err := ParseFlags("test", nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ScanRetryDelay != 2*time.Second {
		t.Fatalf("bad env duration must fall back to default, got %s", cfg.ScanRetryDelay)
	}
}
