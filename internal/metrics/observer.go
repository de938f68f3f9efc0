package metrics

import (
	"strconv"

	"aegminer/internal/miner"
)

// Observer updates collectors from the event stream. It is registered as a
// hub sink so producers never depend on metrics directly.
type Observer struct{}

// Publish implements miner.Sink.
func (Observer) Publish(evt miner.Event) {
	switch evt.Type {
	case miner.EventBlockMined:
		BlocksMined.Inc()
	case miner.EventMiningError:
		MiningErrors.WithLabelValues(strconv.FormatBool(evt.Retriable)).Inc()
	case miner.EventBalanceUpdated:
		WalletBalance.Set(evt.Balance)
	case miner.EventInfoUpdated:
		if evt.Info == nil {
			return
		}
		ChainHeight.Set(float64(evt.Info.Blocks))
		Difficulty.Set(evt.Info.Difficulty)
		NetworkHashPS.Set(evt.Info.NetworkHashPS)
		PooledTx.Set(float64(evt.Info.PooledTx))
	}
}

var _ miner.Sink = Observer{}
