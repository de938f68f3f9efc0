package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BlocksMined = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "aegminer",
		Name:      "blocks_mined_total",
		Help:      "Total blocks mined across all sessions.",
	})

	MiningErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aegminer",
		Name:      "mining_errors_total",
		Help:      "Mining and polling failures by retriability.",
	}, []string{"retriable"})

	WalletBalance = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "aegminer",
		Name:      "wallet_balance",
		Help:      "Last reported wallet balance.",
	})

	ChainHeight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "aegminer",
		Name:      "chain_height",
		Help:      "Node-reported chain height.",
	})

	Difficulty = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "aegminer",
		Name:      "difficulty",
		Help:      "Node-reported mining difficulty.",
	})

	NetworkHashPS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "aegminer",
		Name:      "network_hashps",
		Help:      "Node-reported network hashrate in H/s.",
	})

	PooledTx = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "aegminer",
		Name:      "pooled_tx",
		Help:      "Node-reported mempool transaction count.",
	})

	SessionRunning = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "aegminer",
		Name:      "session_running",
		Help:      "1 while a mining session is live.",
	})

	UptimeSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "aegminer",
		Name:      "uptime_seconds",
		Help:      "Daemon uptime in seconds.",
	})
)

var startTime = time.Now()

// UpdateUptime refreshes the uptime gauge from the process start time.
func UpdateUptime() {
	UptimeSeconds.Set(time.Since(startTime).Seconds())
}

func init() {
	prometheus.MustRegister(
		BlocksMined,
		MiningErrors,
		WalletBalance,
		ChainHeight,
		Difficulty,
		NetworkHashPS,
		PooledTx,
		SessionRunning,
		UptimeSeconds,
	)
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
