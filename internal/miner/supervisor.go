package miner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"aegminer/internal/logging"
)

var (
	// ErrAlreadyRunning is returned by Start while a worker is active.
	ErrAlreadyRunning = errors.New("mining already running")
	// ErrNotRunning is returned by operations that require an active worker.
	ErrNotRunning = errors.New("mining not running")
)

// Supervisor owns at most one active mining worker and enforces
// single-instance semantics.
type Supervisor struct {
	client   MiningClient
	logger   *slog.Logger
	interval time.Duration
	backoff  time.Duration

	mu     sync.Mutex
	worker *Worker
}

// NewSupervisor constructs a supervisor. interval is the inter-attempt delay
// between successful mining attempts, backoff the delay after a retriable
// failure.
func NewSupervisor(client MiningClient, logger *slog.Logger, interval, backoff time.Duration) *Supervisor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Supervisor{
		client:   client,
		logger:   logger,
		interval: interval,
		backoff:  backoff,
	}
}

// Start begins a new mining session on its own goroutine, bound to a fresh
// wallet address resolution, and returns the session identifier immediately.
// It fails with ErrAlreadyRunning while a previous worker is still live.
//
// prepare, when non-nil, runs with the generated session identifier before
// the worker goroutine launches, so callers can set up per-session state
// that must exist before the first event is emitted. A prepare error aborts
// the start and no worker is created.
func (s *Supervisor) Start(ctx context.Context, sink Sink, prepare func(sessionID string) error) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.worker != nil && s.worker.State() != StateStopped {
		return "", ErrAlreadyRunning
	}

	sessionID := uuid.NewString()
	if prepare != nil {
		if err := prepare(sessionID); err != nil {
			return "", err
		}
	}
	worker := NewWorker(s.client, sink, s.logger, sessionID, s.interval, s.backoff)
	s.worker = worker
	s.logger.Info("mining session starting",
		logging.Args(logging.String("session_id", sessionID))...)
	go worker.Run(ctx)
	return sessionID, nil
}

// Stop requests termination of the active worker, if any. It is idempotent
// and returns without waiting; the worker observes the request at its next
// iteration boundary.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	worker := s.worker
	s.mu.Unlock()

	if worker == nil {
		return
	}
	worker.Stop()
}

// IsRunning reports whether a worker is live (resolving, mining, or backing
// off).
func (s *Supervisor) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.worker != nil && s.worker.State() != StateStopped
}

// State reports the active worker's lifecycle state, or StateIdle when no
// session has been started.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.worker == nil {
		return StateIdle
	}
	return s.worker.State()
}

// Wait blocks until the active worker has fully terminated or the context
// ends. It returns immediately when no worker is live.
func (s *Supervisor) Wait(ctx context.Context) error {
	s.mu.Lock()
	worker := s.worker
	s.mu.Unlock()

	if worker == nil {
		return nil
	}
	select {
	case <-worker.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
