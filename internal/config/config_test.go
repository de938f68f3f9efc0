package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aegminer/internal/config"
)

func TestLoadDefaultsExpandPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "aegminer")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.SocketPath != filepath.Join(wantData, "aegminerd.sock") {
		t.Fatalf("unexpected socket path: %q", cfg.Paths.SocketPath)
	}
	if cfg.Daemon.CLIPath != "aegisum-cli" {
		t.Fatalf("unexpected cli path: %q", cfg.Daemon.CLIPath)
	}
	if cfg.Daemon.InvokeTimeout != 10 {
		t.Fatalf("unexpected invoke timeout: %d", cfg.Daemon.InvokeTimeout)
	}
	if cfg.Mining.IntervalSeconds != 2 {
		t.Fatalf("unexpected mining interval: %d", cfg.Mining.IntervalSeconds)
	}
	if cfg.Mining.BackoffSeconds != 5 {
		t.Fatalf("unexpected backoff: %d", cfg.Mining.BackoffSeconds)
	}
	if cfg.Poller.IntervalSeconds != 1 {
		t.Fatalf("unexpected poll interval: %d", cfg.Poller.IntervalSeconds)
	}
	if cfg.Metrics.Bind != "" {
		t.Fatalf("expected metrics disabled by default, got %q", cfg.Metrics.Bind)
	}
	if cfg.Events.Buffer != 1024 {
		t.Fatalf("unexpected event buffer: %d", cfg.Events.Buffer)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %q/%q", cfg.Logging.Format, cfg.Logging.Level)
	}
}

func TestLoadReadsFileAndOverrides(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(tempHome, "aegminer.toml")
	content := strings.Join([]string{
		"[daemon]",
		`cli_path = "/opt/aegisum/bin/aegisum-cli"`,
		"invoke_timeout = 30",
		"",
		"[mining]",
		"interval_seconds = 4",
		"",
		"[metrics]",
		`bind = "127.0.0.1:9310"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Daemon.CLIPath != "/opt/aegisum/bin/aegisum-cli" {
		t.Fatalf("unexpected cli path: %q", cfg.Daemon.CLIPath)
	}
	if cfg.Daemon.InvokeTimeout != 30 {
		t.Fatalf("unexpected invoke timeout: %d", cfg.Daemon.InvokeTimeout)
	}
	if cfg.Mining.IntervalSeconds != 4 {
		t.Fatalf("unexpected mining interval: %d", cfg.Mining.IntervalSeconds)
	}
	if cfg.Mining.BackoffSeconds != 5 {
		t.Fatalf("expected default backoff, got %d", cfg.Mining.BackoffSeconds)
	}
	if cfg.Metrics.Bind != "127.0.0.1:9310" {
		t.Fatalf("unexpected metrics bind: %q", cfg.Metrics.Bind)
	}
}

func TestLoadHonoursCLIEnvFallback(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("AEGISUM_CLI", "/usr/local/bin/aegisum-cli")

	path := filepath.Join(tempHome, "aegminer.toml")
	if err := os.WriteFile(path, []byte("[daemon]\ncli_path = \"\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Daemon.CLIPath != "/usr/local/bin/aegisum-cli" {
		t.Fatalf("expected env fallback, got %q", cfg.Daemon.CLIPath)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name:   "zero mining interval",
			mutate: func(c *config.Config) { c.Mining.IntervalSeconds = 0 },
			want:   "mining.interval_seconds",
		},
		{
			name:   "zero backoff",
			mutate: func(c *config.Config) { c.Mining.BackoffSeconds = -1 },
			want:   "mining.backoff_seconds",
		},
		{
			name:   "zero poll interval",
			mutate: func(c *config.Config) { c.Poller.IntervalSeconds = 0 },
			want:   "poller.interval_seconds",
		},
		{
			name:   "bad metrics bind",
			mutate: func(c *config.Config) { c.Metrics.Bind = "not-an-address" },
			want:   "metrics.bind",
		},
		{
			name:   "bad log format",
			mutate: func(c *config.Config) { c.Logging.Format = "xml" },
			want:   "logging.format",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Logging.Format = "console"
			cfg.Logging.Level = "info"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "cli_path") {
		t.Fatal("sample config missing cli_path")
	}
}
