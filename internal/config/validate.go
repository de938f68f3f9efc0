package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDaemon(); err != nil {
		return err
	}
	if err := c.validateIntervals(); err != nil {
		return err
	}
	if err := c.validateMetrics(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDaemon() error {
	if strings.TrimSpace(c.Daemon.CLIPath) == "" {
		return errors.New("daemon.cli_path must be set")
	}
	if c.Daemon.InvokeTimeout <= 0 {
		return errors.New("daemon.invoke_timeout must be positive")
	}
	return nil
}

func (c *Config) validateIntervals() error {
	if c.Mining.IntervalSeconds <= 0 {
		return errors.New("mining.interval_seconds must be positive")
	}
	if c.Mining.BackoffSeconds <= 0 {
		return errors.New("mining.backoff_seconds must be positive")
	}
	if c.Poller.IntervalSeconds <= 0 {
		return errors.New("poller.interval_seconds must be positive")
	}
	return nil
}

func (c *Config) validateMetrics() error {
	bind := strings.TrimSpace(c.Metrics.Bind)
	if bind == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(bind); err != nil {
		return fmt.Errorf("metrics.bind %q is not a host:port address: %w", bind, err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
