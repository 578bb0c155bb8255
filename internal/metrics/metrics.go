// Package metrics holds the Prometheus instrumentation for backtest
// runs. The Registry satisfies the engine's observer interface so the
// engine stays free of any Prometheus dependency.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/horaciomoreno100/deriv-bot/internal/core"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	contractsOpened  *prometheus.CounterVec
	contractsSettled *prometheus.CounterVec
	entriesSkipped   *prometheus.CounterVec
	contractsOpen    prometheus.Gauge
	stakeAmount      prometheus.Histogram
	backtestsTotal   *prometheus.CounterVec
	backtestDuration prometheus.Histogram
	candlesProcessed prometheus.Counter
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		contractsOpened: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "derivbot_contracts_opened_total",
				Help: "Total number of contracts opened",
			},
			[]string{"direction"},
		),
		contractsSettled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "derivbot_contracts_settled_total",
				Help: "Total number of contracts settled",
			},
			[]string{"result"},
		),
		entriesSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "derivbot_entries_skipped_total",
				Help: "Signals that did not become contracts",
			},
			[]string{"reason"},
		),
		contractsOpen: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "derivbot_contracts_open",
				Help: "Number of currently open contracts",
			},
		),
		stakeAmount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "derivbot_stake_amount",
				Help:    "Stake placed per contract",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		backtestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "derivbot_backtests_total",
				Help: "Total number of backtests",
			},
			[]string{"status"},
		),
		backtestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "derivbot_backtest_duration_seconds",
				Help:    "Backtest duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
			},
		),
		candlesProcessed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "derivbot_candles_processed_total",
				Help: "Candles fed through the engine",
			},
		),
	}

	reg.MustRegister(r.contractsOpened)
	reg.MustRegister(r.contractsSettled)
	reg.MustRegister(r.entriesSkipped)
	reg.MustRegister(r.contractsOpen)
	reg.MustRegister(r.stakeAmount)
	reg.MustRegister(r.backtestsTotal)
	reg.MustRegister(r.backtestDuration)
	reg.MustRegister(r.candlesProcessed)

	return r
}

// ContractOpened records a new contract entry.
func (r *Registry) ContractOpened(direction core.Direction, stake float64) {
	r.contractsOpened.WithLabelValues(string(direction)).Inc()
	r.contractsOpen.Inc()
	r.stakeAmount.Observe(stake)
}

// ContractSettled records a settlement.
func (r *Registry) ContractSettled(won bool, profit float64) {
	result := "lost"
	if won {
		result = "won"
	}
	r.contractsSettled.WithLabelValues(result).Inc()
	r.contractsOpen.Dec()
}

// EntrySkipped records a signal that was gated out.
func (r *Registry) EntrySkipped(reason string) {
	r.entriesSkipped.WithLabelValues(reason).Inc()
}

// RecordCandle counts a processed candle.
func (r *Registry) RecordCandle() {
	r.candlesProcessed.Inc()
}

// RecordBacktest records a backtest completion.
func (r *Registry) RecordBacktest(status string, duration float64) {
	r.backtestsTotal.WithLabelValues(status).Inc()
	r.backtestDuration.Observe(duration)
}
