package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDaemon()
	c.normalizeNotifications()
	c.normalizeEvents()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SocketPath) == "" {
		c.Paths.SocketPath = defaultSocketPath
	}
	if c.Paths.SocketPath, err = expandPath(c.Paths.SocketPath); err != nil {
		return fmt.Errorf("paths.socket_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeDaemon() {
	c.Daemon.CLIPath = strings.TrimSpace(c.Daemon.CLIPath)
	if c.Daemon.CLIPath == "" {
		if value, ok := os.LookupEnv("AEGISUM_CLI"); ok && strings.TrimSpace(value) != "" {
			c.Daemon.CLIPath = strings.TrimSpace(value)
		} else {
			c.Daemon.CLIPath = defaultCLIPath
		}
	}
	if c.Daemon.InvokeTimeout <= 0 {
		c.Daemon.InvokeTimeout = defaultInvokeTimeout
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
	if c.Notifications.BlockInterval <= 0 {
		c.Notifications.BlockInterval = defaultNotifyBlockInterval
	}
}

func (c *Config) normalizeEvents() {
	if c.Events.Buffer <= 0 {
		c.Events.Buffer = defaultEventBuffer
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
