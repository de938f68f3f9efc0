package main

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestMineStartStopCLI(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Running")
	requireContains(t, out, "Not mining")

	out, _, err = runCLI(t, []string{"mine", "start"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("mine start: %v", err)
	}
	requireContains(t, out, "Mining started (session ")

	// duplicate start is rejected without an error exit
	out, _, err = runCLI(t, []string{"mine", "start"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("duplicate mine start: %v", err)
	}
	requireContains(t, out, "Mining not started")

	waitFor(t, 15*time.Second, func() bool {
		return env.daemon.Status(context.Background()).BlocksMined >= 1
	})

	out, _, err = runCLI(t, []string{"mine", "stop"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("mine stop: %v", err)
	}
	requireContains(t, out, "Mining stopped")

	// stopping again reports the idle state instead of failing
	out, _, err = runCLI(t, []string{"mine", "stop"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("idle mine stop: %v", err)
	}
	requireContains(t, out, "mining not running")
}

func TestHistoryAndWalletCLI(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"mine", "start"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("mine start: %v", err)
	}
	sessionID := extractSessionID(t, out)

	waitFor(t, 15*time.Second, func() bool {
		return env.daemon.Status(context.Background()).BlocksMined >= 1
	})
	if _, _, err := runCLI(t, []string{"mine", "stop"}, env.socketPath, env.configPath); err != nil {
		t.Fatalf("mine stop: %v", err)
	}

	out, _, err = runCLI(t, []string{"history"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, sessionID)

	out, _, err = runCLI(t, []string{"history", sessionID}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("history session: %v", err)
	}
	requireContains(t, out, "Block Hash")

	out, _, err = runCLI(t, []string{"balance"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	requireContains(t, out, "AEGS")

	out, _, err = runCLI(t, []string{"info"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	requireContains(t, out, "main")

	// --direct bypasses the daemon and invokes the CLI binary itself
	out, _, err = runCLI(t, []string{"balance", "--direct"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("balance --direct: %v", err)
	}
	requireContains(t, out, "AEGS")
}

func extractSessionID(t *testing.T, startOutput string) string {
	t.Helper()
	idx := strings.Index(startOutput, "session ")
	if idx < 0 {
		t.Fatalf("expected session id in %q", startOutput)
	}
	rest := startOutput[idx+len("session "):]
	end := strings.IndexAny(rest, ")\n")
	if end < 0 {
		t.Fatalf("malformed start output %q", startOutput)
	}
	return rest[:end]
}
