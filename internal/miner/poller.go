package miner

import (
	"context"
	"log/slog"
	"time"

	"aegminer/internal/logging"
	"aegminer/internal/services/aegisum"
)

// PollClient is the slice of the wallet node CLI the status poller drives.
type PollClient interface {
	GetBalance(ctx context.Context) (float64, error)
	GetMiningInfo(ctx context.Context) (aegisum.MiningInfo, error)
}

// Poller periodically refreshes balance and mining-info snapshots on a
// cadence independent of the mining loop. Poller failures are observational
// only and never affect worker state.
type Poller struct {
	client   PollClient
	sink     Sink
	logger   *slog.Logger
	interval time.Duration
}

// NewPoller constructs a status poller.
func NewPoller(client PollClient, sink Sink, logger *slog.Logger, interval time.Duration) *Poller {
	if logger == nil {
		logger = logging.NewNop()
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Poller{
		client:   client,
		sink:     sink,
		logger:   logger,
		interval: interval,
	}
}

// Run polls until the context is canceled. It is intended to run on its own
// goroutine.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	balance, err := p.client.GetBalance(ctx)
	if err != nil {
		p.observeFailure(ctx, "getbalance", err)
	} else {
		p.emit(Event{Type: EventBalanceUpdated, Balance: balance})
	}

	info, err := p.client.GetMiningInfo(ctx)
	if err != nil {
		p.observeFailure(ctx, "getmininginfo", err)
		return
	}
	p.emit(Event{Type: EventInfoUpdated, Info: &info})
}

func (p *Poller) observeFailure(ctx context.Context, operation string, err error) {
	if ctx.Err() != nil {
		// Shutdown races look like command failures; don't report them.
		return
	}
	p.logger.Debug("status poll failed",
		logging.Args(logging.String("operation", operation), logging.Error(err))...)
	p.emit(Event{
		Type:      EventMiningError,
		Message:   err.Error(),
		Retriable: true,
	})
}

func (p *Poller) emit(evt Event) {
	evt.Source = SourcePoller
	if p.sink != nil {
		p.sink.Publish(evt)
	}
}
