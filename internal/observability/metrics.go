package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for OutcomeBook.
type Metrics struct {
	// --- Engine ---
	OpsAccepted   *prometheus.CounterVec
	OpsRejected   *prometheus.CounterVec
	OpDuration    *prometheus.HistogramVec
	FillsTotal    prometheus.Counter
	SharesMinted  prometheus.Counter
	SharesClaimed prometheus.Counter
	LevelsCleared prometheus.Counter
	MarketsOpen   prometheus.Gauge

	// --- Ingestion ---
	CommandsReceived *prometheus.CounterVec
	CommandErrors    *prometheus.CounterVec
	PublishDrops     prometheus.Counter

	// --- Operation journal ---
	JournalOpsWritten prometheus.Counter
	JournalBatchDur   prometheus.Histogram
	JournalErrors     *prometheus.CounterVec
	JournalLastSeq    prometheus.Gauge
	ReplayOpsTotal    prometheus.Counter
	ReplayDuration    prometheus.Gauge
}

// NewMetrics registers all metrics on the default registry.
func NewMetrics() *Metrics {
	latencyBuckets := []float64{
		0.000001, 0.000005, 0.00001, 0.00005, 0.0001,
		0.0005, 0.001, 0.002, 0.005, 0.01,
	}

	return &Metrics{
		OpsAccepted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clob_ops_accepted_total",
			Help: "Mutating operations accepted by the engine",
		}, []string{"op"}),

		OpsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clob_ops_rejected_total",
			Help: "Operations rejected before any state change",
		}, []string{"op", "reason"}),

		OpDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clob_op_duration_seconds",
			Help:    "Time to execute one engine operation under the market lock",
			Buckets: latencyBuckets,
		}, []string{"op"}),

		FillsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clob_fills_total",
			Help: "Resting orders filled (fully or partially)",
		}),

		SharesMinted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clob_shares_minted_total",
			Help: "Outcome share pairs minted by crossing opposing bids",
		}),

		SharesClaimed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clob_shares_claimed_total",
			Help: "Winning shares burned by claims",
		}),

		LevelsCleared: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clob_levels_cleared_total",
			Help: "Price levels fully cleared by market buys",
		}),

		MarketsOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "clob_markets_open",
			Help: "Markets created and not yet resolved",
		}),

		CommandsReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clob_commands_received_total",
			Help: "Commands received from NATS",
		}, []string{"command"}),

		CommandErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clob_command_errors_total",
			Help: "Commands that failed to parse or execute",
		}, []string{"command", "reason"}),

		PublishDrops: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clob_publish_drops_total",
			Help: "Audit records dropped on a full publish channel",
		}),

		JournalOpsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clob_journal_ops_written_total",
			Help: "Accepted operations written to the Postgres journal",
		}),

		JournalBatchDur: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "clob_journal_batch_duration_seconds",
			Help:    "Postgres journal batch write duration",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),

		JournalErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clob_journal_errors_total",
			Help: "Journal write failures by stage",
		}, []string{"stage"}),

		JournalLastSeq: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "clob_journal_last_sequence",
			Help: "Highest operation sequence confirmed in Postgres",
		}),

		ReplayOpsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clob_replay_ops_total",
			Help: "Operations re-applied from the journal at startup",
		}),

		ReplayDuration: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "clob_replay_duration_seconds",
			Help: "Time spent replaying the operation journal",
		}),
	}
}
