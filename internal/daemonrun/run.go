// Package daemonrun wires configuration, storage, the wallet node client,
// and the IPC server into the daemon process runtime loop.
package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"aegminer/internal/config"
	"aegminer/internal/daemon"
	"aegminer/internal/ipc"
	"aegminer/internal/ledger"
	"aegminer/internal/logging"
	"aegminer/internal/metrics"
	"aegminer/internal/miner"
	"aegminer/internal/notifications"
	"aegminer/internal/services/aegisum"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// Run starts the daemon runtime loop and blocks until a signal or an IPC
// shutdown request arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("prepare directories: %w", err)
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	pidPath := filepath.Join(cfg.Paths.DataDir, "aegminerd.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := ledger.Open(cfg)
	if err != nil {
		logger.Error("open session ledger", logging.Args(logging.Error(err))...)
		return err
	}
	defer store.Close()

	client, err := aegisum.New(cfg.Daemon.CLIPath, cfg.Daemon.InvokeTimeout)
	if err != nil {
		logger.Error("configure wallet node client", logging.Args(logging.Error(err))...)
		return err
	}

	notifier := notifications.NewService(cfg)
	hub := miner.NewHub(cfg.Events.Buffer)
	hub.AddSink(ledger.NewRecorder(store, logger))
	hub.AddSink(metrics.Observer{})
	notifyObserver := notifications.NewObserver(notifier, logger, cfg.Notifications.BlockInterval)
	// Closed after the daemon stops so queued notifications drain once all
	// producers have terminated.
	defer notifyObserver.Close()
	hub.AddSink(notifyObserver)

	d, err := daemon.New(cfg, client, store, notifier, hub, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(signalCtx, cfg.Paths.SocketPath, d, cancel, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	metrics.UpdateUptime()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-signalCtx.Done():
				return
			case <-ticker.C:
				metrics.UpdateUptime()
			}
		}
	}()

	var metricsServer *http.Server
	if cfg.Metrics.Bind != "" {
		metricsServer = &http.Server{Addr: cfg.Metrics.Bind, Handler: metrics.Handler()}
		go func() {
			logger.Info("metrics listener starting", logging.Args(logging.String("bind", cfg.Metrics.Bind))...)
			if serveErr := metricsServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				logger.Warn("metrics listener failed", logging.Args(logging.Error(serveErr))...)
			}
		}()
	}

	if err := d.Start(signalCtx); err != nil {
		logger.Error("daemon start failed", logging.Args(logging.Error(err))...)
		return err
	}

	<-signalCtx.Done()
	logger.Info("aegminer daemon shutting down")
	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = metricsServer.Shutdown(shutdownCtx)
		shutdownCancel()
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
