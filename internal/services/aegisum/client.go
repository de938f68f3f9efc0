package aegisum

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"aegminer/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (stdout string, err error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps aegisum-cli interactions. It performs no retries and emits no
// logs; callers own both policies.
type Client struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// New constructs a wallet node CLI client. invokeTimeoutSeconds bounds each
// invocation; zero disables the bound.
func New(binary string, invokeTimeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, services.Wrap(services.ErrConfiguration, "aegisum", "", "cli binary required", nil)
	}
	client := &Client{
		binary:  binary,
		timeout: time.Duration(invokeTimeoutSeconds) * time.Second,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Invoke runs a named daemon command and returns its trimmed stdout. Failures
// are typed: *DaemonError for a non-zero exit, *UnavailableError when the
// executable cannot be launched.
func (c *Client) Invoke(ctx context.Context, command string, args ...string) (string, error) {
	if strings.TrimSpace(command) == "" {
		return "", services.Wrap(services.ErrConfiguration, "aegisum", "invoke", "command name required", nil)
	}

	invokeCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		invokeCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	invokeCtx = services.WithCommand(invokeCtx, command)

	stdout, err := c.exec.Run(invokeCtx, c.binary, append([]string{command}, args...))
	if err != nil {
		var daemonErr *DaemonError
		if errors.As(err, &daemonErr) && daemonErr.Command == "" {
			daemonErr.Command = command
		}
		return "", err
	}
	return strings.TrimSpace(stdout), nil
}

// GetNewAddress resolves a fresh wallet address for mining rewards.
func (c *Client) GetNewAddress(ctx context.Context) (string, error) {
	out, err := c.Invoke(ctx, "getnewaddress")
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", &MalformedResponseError{Command: "getnewaddress", Reason: "empty address"}
	}
	return out, nil
}

// GenerateToAddress mines n blocks to the given address and returns the block
// hashes the node reports.
func (c *Client) GenerateToAddress(ctx context.Context, n int, address string) ([]string, error) {
	if n <= 0 {
		return nil, services.Wrap(services.ErrConfiguration, "aegisum", "generatetoaddress", "block count must be positive", nil)
	}
	if strings.TrimSpace(address) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "aegisum", "generatetoaddress", "address required", nil)
	}
	out, err := c.Invoke(ctx, "generatetoaddress", strconv.Itoa(n), address)
	if err != nil {
		return nil, err
	}
	var hashes []string
	if err := json.Unmarshal([]byte(out), &hashes); err != nil {
		return nil, &MalformedResponseError{Command: "generatetoaddress", Reason: "expected JSON array of block hashes", Err: err}
	}
	return hashes, nil
}

// GetBalance fetches the current wallet balance.
func (c *Client) GetBalance(ctx context.Context) (float64, error) {
	out, err := c.Invoke(ctx, "getbalance")
	if err != nil {
		return 0, err
	}
	balance, err := strconv.ParseFloat(out, 64)
	if err != nil {
		return 0, &MalformedResponseError{Command: "getbalance", Reason: "expected numeric balance", Err: err}
	}
	return balance, nil
}

// GetMiningInfo fetches and decodes the node's mining state snapshot.
func (c *Client) GetMiningInfo(ctx context.Context) (MiningInfo, error) {
	out, err := c.Invoke(ctx, "getmininginfo")
	if err != nil {
		return MiningInfo{}, err
	}
	return ParseMiningInfo(out)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.String(), nil
	}

	command, _ := services.CommandFromContext(ctx)

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			// The process was killed by the invocation deadline.
			return "", &DaemonError{
				Command:  command,
				ExitCode: exitErr.ExitCode(),
				Stderr:   fmt.Sprintf("invocation aborted: %v", ctxErr),
			}
		}
		return "", &DaemonError{
			Command:  command,
			ExitCode: exitErr.ExitCode(),
			Stderr:   strings.TrimSpace(stderr.String()),
		}
	}

	var pathErr *fs.PathError
	if errors.Is(err, exec.ErrNotFound) || errors.As(err, &pathErr) {
		return "", &UnavailableError{Binary: binary, Err: err}
	}
	return "", &UnavailableError{Binary: binary, Err: err}
}
