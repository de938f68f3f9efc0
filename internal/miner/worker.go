package miner

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"aegminer/internal/logging"
	"aegminer/internal/services"
	"aegminer/internal/services/aegisum"
)

// State identifies the worker's position in its lifecycle.
type State int32

const (
	StateIdle State = iota
	StateResolving
	StateMining
	StateBackoff
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StateMining:
		return "mining"
	case StateBackoff:
		return "backoff"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// MiningClient is the slice of the wallet node CLI the worker drives.
type MiningClient interface {
	GetNewAddress(ctx context.Context) (string, error)
	GenerateToAddress(ctx context.Context, n int, address string) ([]string, error)
	GetMiningInfo(ctx context.Context) (aegisum.MiningInfo, error)
}

// Worker runs the retrying, cancellable mining loop for one session.
//
// Lifecycle: Resolving -> Mining <-> Backoff -> Stopped. Address resolution
// failure is fatal to the run; every failure inside the mining loop is
// retriable and never exits the loop on its own. Stop is cooperative: the
// flag is observed at iteration boundaries, never mid-call.
type Worker struct {
	client   MiningClient
	sink     Sink
	logger   *slog.Logger
	interval time.Duration
	backoff  time.Duration

	session Session
	state   atomic.Int32

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewWorker constructs a worker bound to a fresh session. Run must be called
// exactly once, on its own goroutine.
func NewWorker(client MiningClient, sink Sink, logger *slog.Logger, sessionID string, interval, backoff time.Duration) *Worker {
	if logger == nil {
		logger = logging.NewNop()
	}
	w := &Worker{
		client:   client,
		sink:     sink,
		logger:   logger,
		interval: interval,
		backoff:  backoff,
		session: Session{
			ID:        sessionID,
			StartedAt: time.Now().UTC(),
		},
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	w.state.Store(int32(StateIdle))
	return w
}

// State reports the worker's current lifecycle state.
func (w *Worker) State() State {
	return State(w.state.Load())
}

// Done is closed once the worker's loop has fully terminated.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Stop requests cooperative termination. It is idempotent and safe to call
// from any state; the loop finishes its in-flight daemon call first.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
}

// Run executes the mining loop until Stop is called, the context is canceled,
// or address resolution fails.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)
	defer w.state.Store(int32(StateStopped))

	ctx = withSession(ctx, w.session.ID)

	w.state.Store(int32(StateResolving))
	address, err := w.client.GetNewAddress(ctx)
	if err != nil {
		w.logger.Error("wallet address resolution failed",
			logging.Args(logging.Error(err), logging.String("session_id", w.session.ID))...)
		w.emit(Event{
			Type:      EventMiningError,
			Message:   err.Error(),
			Retriable: false,
		})
		return
	}
	w.session.WalletAddress = address
	w.logger.Info("mining address resolved",
		logging.Args(logging.String("address", address), logging.String("session_id", w.session.ID))...)
	w.emit(Event{Type: EventAddressResolved, Address: address})

	w.state.Store(int32(StateMining))
	for !w.stopRequested(ctx) {
		hashes, err := w.client.GenerateToAddress(ctx, 1, address)
		if err != nil {
			w.retreat(ctx, err)
			continue
		}

		w.session.BlocksMined++
		evt := Event{Type: EventBlockMined, BlocksMined: w.session.BlocksMined}
		if len(hashes) > 0 {
			evt.BlockHash = hashes[0]
		}
		w.emit(evt)

		info, err := w.client.GetMiningInfo(ctx)
		if err != nil {
			w.retreat(ctx, err)
			continue
		}
		w.emit(Event{Type: EventInfoUpdated, Info: &info})

		w.sleep(ctx, w.interval)
	}
}

// retreat records a retriable mining failure and holds in Backoff before the
// loop re-enters Mining.
func (w *Worker) retreat(ctx context.Context, err error) {
	w.logger.Warn("mining attempt failed",
		logging.Args(
			logging.Error(err),
			logging.String("session_id", w.session.ID),
			logging.Duration("backoff", w.backoff),
		)...)
	w.emit(Event{
		Type:      EventMiningError,
		Message:   err.Error(),
		Retriable: true,
	})
	w.state.Store(int32(StateBackoff))
	w.sleep(ctx, w.backoff)
	w.state.Store(int32(StateMining))
}

func (w *Worker) emit(evt Event) {
	evt.Source = SourceWorker
	evt.SessionID = w.session.ID
	if w.sink != nil {
		w.sink.Publish(evt)
	}
}

func withSession(ctx context.Context, id string) context.Context {
	return services.WithSessionID(ctx, id)
}

func (w *Worker) stopRequested(ctx context.Context) bool {
	select {
	case <-w.stop:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func (w *Worker) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-w.stop:
	case <-ctx.Done():
	case <-timer.C:
	}
}
