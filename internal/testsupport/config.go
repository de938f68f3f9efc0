package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"aegminer/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.SocketPath = filepath.Join(base, "aegminerd.sock")
	cfgVal.Mining.IntervalSeconds = 1
	cfgVal.Mining.BackoffSeconds = 1
	cfgVal.Poller.IntervalSeconds = 1
	cfgVal.Metrics.Bind = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure config directories: %v", err)
	}
	return builder.cfg
}

// WithCLIPath overrides the wallet node CLI binary on the test config.
func WithCLIPath(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Daemon.CLIPath = path
	}
}

// WithNtfyTopic sets the push notification topic on the test config.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// WithStubbedCLI writes a shell stub that answers the wallet node commands
// with fixed responses and points the config at it.
func WithStubbedCLI() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Daemon.CLIPath = StubCLI(b.t, b.baseDir, stubCLIScript)
	}
}

const stubCLIScript = `#!/bin/sh
case "$1" in
getnewaddress)
	echo "aeg1qstubaddress0000000000000000000000"
	;;
generatetoaddress)
	echo '["0000000000000000000000000000000000000000000000000000000000000001"]'
	;;
getbalance)
	echo "12.34567890"
	;;
getmininginfo)
	echo '{"blocks": 1024, "currentblockweight": 4000, "difficulty": 0.002, "networkhashps": 1234567.8, "pooledtx": 3, "chain": "main", "warnings": ""}'
	;;
*)
	echo "error: unknown command $1" >&2
	exit 1
	;;
esac
`

// StubCLI writes an executable script under dir and returns its path.
func StubCLI(t testing.TB, dir, script string) string {
	t.Helper()

	binDir := filepath.Join(dir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(binDir, "aegisum-cli")
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub cli: %v", err)
	}
	return target
}
