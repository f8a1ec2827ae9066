package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Ticker outcomes
const (
	OutcomeAnalyzed = "analyzed"
	OutcomeSkipped  = "skipped"
)

// Publish statuses
const (
	StatusPublished = "published"
	StatusFailed    = "failed"
	StatusEmpty     = "empty"
)

// Registry holds all Prometheus metrics of a scan.
type Registry struct {
	*prometheus.Registry

	tickersTotal    *prometheus.CounterVec
	fetchDuration   prometheus.Histogram
	rows            prometheus.Gauge
	runDuration     prometheus.Gauge
	runsTotal       prometheus.Counter
	publishTotal    *prometheus.CounterVec
	lastSuccess     prometheus.Gauge
	universeTickers prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())

	r := &Registry{Registry: reg}

	r.tickersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swingscan_tickers_total",
			Help: "Tickers processed, by outcome",
		},
		[]string{"outcome"},
	)
	r.fetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "swingscan_fetch_duration_seconds",
			Help:    "Market data fetch duration per ticker in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
	r.rows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "swingscan_rows",
			Help: "Rows in the last result table",
		},
	)
	r.runDuration = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "swingscan_run_duration_seconds",
			Help: "Duration of the last run in seconds",
		},
	)
	r.runsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "swingscan_runs_total",
			Help: "Total number of runs started",
		},
	)
	r.publishTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swingscan_publish_total",
			Help: "Snapshot publish attempts, by status",
		},
		[]string{"status"},
	)
	r.lastSuccess = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "swingscan_last_success_timestamp_seconds",
			Help: "Unix time of the last successful publish",
		},
	)
	r.universeTickers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "swingscan_universe_tickers",
			Help: "Number of tickers in the loaded universe",
		},
	)

	reg.MustRegister(r.tickersTotal)
	reg.MustRegister(r.fetchDuration)
	reg.MustRegister(r.rows)
	reg.MustRegister(r.runDuration)
	reg.MustRegister(r.runsTotal)
	reg.MustRegister(r.publishTotal)
	reg.MustRegister(r.lastSuccess)
	reg.MustRegister(r.universeTickers)

	return r
}

// RecordTicker records the outcome of one ticker.
func (r *Registry) RecordTicker(outcome string) {
	r.tickersTotal.WithLabelValues(outcome).Inc()
}

// ObserveFetch records a market data fetch.
func (r *Registry) ObserveFetch(d time.Duration) {
	r.fetchDuration.Observe(d.Seconds())
}

// RecordRunStart counts a run and the size of its universe.
func (r *Registry) RecordRunStart(universe int) {
	r.runsTotal.Inc()
	r.universeTickers.Set(float64(universe))
}

// RecordRun records the end of a run.
func (r *Registry) RecordRun(rows int, d time.Duration) {
	r.rows.Set(float64(rows))
	r.runDuration.Set(d.Seconds())
}

// RecordPublish records a publish attempt.
func (r *Registry) RecordPublish(status string, at time.Time) {
	r.publishTotal.WithLabelValues(status).Inc()
	if status == StatusPublished {
		r.lastSuccess.Set(float64(at.Unix()))
	}
}

// WriteTextfile writes all metrics in the text exposition format for the
// node_exporter textfile collector. The file is replaced atomically.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.Registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
