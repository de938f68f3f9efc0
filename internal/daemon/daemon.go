package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"aegminer/internal/config"
	"aegminer/internal/ledger"
	"aegminer/internal/logging"
	"aegminer/internal/metrics"
	"aegminer/internal/miner"
	"aegminer/internal/notifications"
	"aegminer/internal/services/aegisum"
)

// Client is the slice of the wallet node CLI the daemon drives, both through
// the mining worker and via on-demand queries.
type Client interface {
	GetNewAddress(ctx context.Context) (string, error)
	GenerateToAddress(ctx context.Context, n int, address string) ([]string, error)
	GetBalance(ctx context.Context) (float64, error)
	GetMiningInfo(ctx context.Context) (aegisum.MiningInfo, error)
}

// Daemon coordinates the mining supervisor and status poller and enforces
// single-instance execution via a file lock.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	client   Client
	store    *ledger.Store
	notifier notifications.Service
	hub      *miner.Hub
	tracker  *statusTracker

	supervisor *miner.Supervisor
	poller     *miner.Poller

	logPath  string
	lockPath string
	lock     *flock.Flock

	running    atomic.Bool
	ctx        context.Context
	cancel     context.CancelFunc
	pollerDone chan struct{}
}

// Status represents daemon runtime information.
type Status struct {
	Running            bool
	MiningState        string
	SessionID          string
	WalletAddress      string
	BlocksMined        int64
	Balance            float64
	Info               *aegisum.MiningInfo
	LastError          string
	LastErrorRetriable bool
	LedgerDBPath       string
	LockFilePath       string
}

// New constructs a daemon with initialized dependencies. The hub is the
// event fan-out shared with the IPC layer; sinks for persistence, metrics,
// and notifications are expected to already be attached to it.
func New(cfg *config.Config, client Client, store *ledger.Store, notifier notifications.Service, hub *miner.Hub, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || client == nil || store == nil || hub == nil {
		return nil, errors.New("daemon requires config, client, store, and hub")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}

	tracker := newStatusTracker()
	hub.AddSink(tracker)

	interval := time.Duration(cfg.Mining.IntervalSeconds) * time.Second
	backoff := time.Duration(cfg.Mining.BackoffSeconds) * time.Second
	pollInterval := time.Duration(cfg.Poller.IntervalSeconds) * time.Second

	lockPath := filepath.Join(cfg.Paths.DataDir, "aegminerd.lock")
	return &Daemon{
		cfg:        cfg,
		logger:     logger,
		client:     client,
		store:      store,
		notifier:   notifier,
		hub:        hub,
		tracker:    tracker,
		supervisor: miner.NewSupervisor(client, logger, interval, backoff),
		poller:     miner.NewPoller(client, hub, logger, pollInterval),
		logPath:    filepath.Join(cfg.Paths.LogDir, "aegminerd.log"),
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and launches the background status poller.
// Mining itself stays idle until StartMining is called.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another aegminer daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.pollerDone = make(chan struct{})
	go func() {
		defer close(d.pollerDone)
		d.poller.Run(d.ctx)
	}()

	d.running.Store(true)
	d.logger.Info("aegminer daemon started", logging.Args(logging.String("lock", d.lockPath))...)
	return nil
}

// Stop ends any live mining session, stops the poller, and releases the
// daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.supervisor.Stop()
	waitCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := d.supervisor.Wait(waitCtx); err != nil {
		d.logger.Warn("mining worker did not stop in time", logging.Args(logging.Error(err))...)
	}
	cancel()

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.pollerDone != nil {
		<-d.pollerDone
		d.pollerDone = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Args(logging.Error(err))...)
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("aegminer daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// StartMining begins a new mining session. It returns the session identifier
// and miner.ErrAlreadyRunning when a session is already live.
func (d *Daemon) StartMining(ctx context.Context) (string, error) {
	if !d.running.Load() {
		return "", errors.New("daemon not running")
	}

	// The ledger row and tracker state must exist before the worker emits
	// its first event, or the recorder's address/block writes hit a missing
	// session row.
	sessionID, err := d.supervisor.Start(d.ctx, d.hub, func(sessionID string) error {
		if err := d.store.BeginSession(dbContext(ctx), sessionID, time.Now().UTC()); err != nil {
			d.logger.Warn("failed to record session start",
				logging.Args(logging.Error(err), logging.String("session_id", sessionID))...)
		}
		d.tracker.beginSession(sessionID)
		return nil
	})
	if err != nil {
		return "", err
	}
	metrics.SessionRunning.Set(1)
	go d.watchSession(sessionID)
	return sessionID, nil
}

// StopMining requests cooperative termination of the live session and waits
// for the worker to finish its in-flight iteration.
func (d *Daemon) StopMining(ctx context.Context) error {
	if !d.supervisor.IsRunning() {
		return miner.ErrNotRunning
	}
	d.supervisor.Stop()
	return d.supervisor.Wait(ctx)
}

// watchSession finalizes ledger and notification state once the session's
// worker has fully terminated.
func (d *Daemon) watchSession(sessionID string) {
	_ = d.supervisor.Wait(context.Background())
	metrics.SessionRunning.Set(0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// A fatal worker error closes the session through the ledger recorder;
	// this call is a no-op in that case.
	if err := d.store.EndSession(ctx, sessionID, time.Now().UTC(), ""); err != nil {
		d.logger.Warn("failed to record session end",
			logging.Args(logging.Error(err), logging.String("session_id", sessionID))...)
	}

	// The live tracker may already describe a newer session by now, so the
	// ending session's tally comes from its ledger row. The snapshot is a
	// fallback for a broken ledger, used only while it still matches.
	var blocksMined int64
	if record, err := d.store.Session(ctx, sessionID); err == nil {
		blocksMined = record.BlocksMined
	} else if snap := d.tracker.snapshot(); snap.SessionID == sessionID {
		blocksMined = snap.BlocksMined
	}

	if err := d.notifier.NotifyMiningStopped(ctx, blocksMined); err != nil {
		d.logger.Warn("stop notification failed", logging.Args(logging.Error(err))...)
	}
	d.logger.Info("mining session ended",
		logging.Args(
			logging.String("session_id", sessionID),
			logging.Int64("blocks_mined", blocksMined),
		)...)
}

// IsMining reports whether a mining session is live.
func (d *Daemon) IsMining() bool {
	return d.supervisor.IsRunning()
}

// Status returns the current daemon status snapshot.
func (d *Daemon) Status(ctx context.Context) Status {
	snap := d.tracker.snapshot()
	return Status{
		Running:            d.running.Load(),
		MiningState:        d.supervisor.State().String(),
		SessionID:          snap.SessionID,
		WalletAddress:      snap.WalletAddress,
		BlocksMined:        snap.BlocksMined,
		Balance:            snap.Balance,
		Info:               snap.Info,
		LastError:          snap.LastError,
		LastErrorRetriable: snap.LastErrorRetriable,
		LedgerDBPath:       d.store.Path(),
		LockFilePath:       d.lockPath,
	}
}

// Events returns buffered events with sequence greater than since, waiting
// for new events when wait is set.
func (d *Daemon) Events(ctx context.Context, since uint64, limit int, wait bool) ([]miner.Event, uint64, error) {
	return d.hub.Fetch(ctx, since, limit, wait)
}

// Balance queries the wallet balance directly from the node.
func (d *Daemon) Balance(ctx context.Context) (float64, error) {
	return d.client.GetBalance(ctx)
}

// MiningInfo queries the current mining statistics directly from the node.
func (d *Daemon) MiningInfo(ctx context.Context) (aegisum.MiningInfo, error) {
	return d.client.GetMiningInfo(ctx)
}

// History returns recorded sessions, newest first.
func (d *Daemon) History(ctx context.Context, limit int) ([]ledger.SessionRecord, error) {
	return d.store.Sessions(ctx, limit)
}

// SessionBlocks returns the blocks recorded for one session in mining order.
func (d *Daemon) SessionBlocks(ctx context.Context, sessionID string) ([]ledger.BlockRecord, error) {
	return d.store.SessionBlocks(ctx, sessionID)
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg == nil {
		return false, "configuration unavailable", errors.New("configuration unavailable")
	}
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := d.notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

func dbContext(ctx context.Context) context.Context {
	if ctx != nil && ctx.Err() == nil {
		return ctx
	}
	return context.Background()
}
