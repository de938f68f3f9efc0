package aegisum

import (
	"context"
	"errors"
	"runtime"
	"testing"
)

func TestCommandExecutorClassifiesExitFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	_, err := commandExecutor{}.Run(context.Background(), "/bin/sh", []string{"-c", "echo oops >&2; exit 3"})
	var daemonErr *DaemonError
	if !errors.As(err, &daemonErr) {
		t.Fatalf("expected *DaemonError, got %v", err)
	}
	if daemonErr.ExitCode != 3 {
		t.Fatalf("exit code: got %d", daemonErr.ExitCode)
	}
	if daemonErr.Stderr != "oops" {
		t.Fatalf("stderr: got %q", daemonErr.Stderr)
	}
}

func TestCommandExecutorClassifiesMissingBinary(t *testing.T) {
	_, err := commandExecutor{}.Run(context.Background(), "/nonexistent/aegisum-cli", []string{"getbalance"})
	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected *UnavailableError, got %v", err)
	}
}

func TestCommandExecutorReturnsStdout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	out, err := commandExecutor{}.Run(context.Background(), "/bin/sh", []string{"-c", "echo 42.5"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != "42.5\n" {
		t.Fatalf("stdout: got %q", out)
	}
}
