package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	CyclesCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "arb_cycles_completed_total",
		Help: "Refresh cycles that fetched, scanned and committed",
	})

	CyclesFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "arb_cycles_failed_total",
		Help: "Refresh cycles aborted because a price feed failed",
	})

	CyclesSuperseded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "arb_cycles_superseded_total",
		Help: "Refresh cycles cancelled by a newer tick",
	})

	FetchLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "arb_fetch_latency_seconds",
		Help:    "Time to fetch quotes from one exchange",
		Buckets: prometheus.DefBuckets,
	}, []string{"exchange"})

	OpportunitiesScanned = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "arb_pairs_scanned_total",
		Help: "Asset/exchange pairs evaluated by the scanner",
	})

	OpportunitiesFound = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "arb_profitable_opportunities_total",
		Help: "Emitted opportunities with positive net profit, by asset",
	}, []string{"asset"})

	BestNetProfit = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "arb_best_net_profit_usd",
		Help: "Net profit of the top ranked opportunity in the last cycle",
	})

	AlertsDispatched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "arb_alerts_dispatched_total",
		Help: "Alerts sent to sinks",
	})

	SinkErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "arb_alert_sink_errors_total",
		Help: "Alert sink failures, by sink",
	}, []string{"sink"})
)

func init() {
	prometheus.MustRegister(
		CyclesCompleted,
		CyclesFailed,
		CyclesSuperseded,
		FetchLatency,
		OpportunitiesScanned,
		OpportunitiesFound,
		BestNetProfit,
		AlertsDispatched,
		SinkErrors,
	)
}
