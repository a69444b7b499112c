// Package metrics holds the Prometheus collectors for ingestion and the web API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "barflow"

// Failure stages of a symbol run.
const (
	StageConnect    = "connect"
	StageFetch      = "fetch"
	StageWrite      = "write"
	StageDisconnect = "disconnect"
)

// Metrics is the collector set, registered on its own registry.
type Metrics struct {
	Registry *prometheus.Registry

	BarsFetched    *prometheus.CounterVec
	PointsWritten  *prometheus.CounterVec
	SymbolFailures *prometheus.CounterVec
	RunDuration    prometheus.Histogram
	LastRunSuccess prometheus.Gauge

	HTTPRequests *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		BarsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "bars_fetched_total",
			Help:      "Bars returned by the gateway",
		}, []string{"symbol"}),
		PointsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "points_written_total",
			Help:      "Points accepted by the time-series store",
		}, []string{"symbol"}),
		SymbolFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "symbol_failures_total",
			Help:      "Symbol runs that failed, by stage",
		}, []string{"symbol", "stage"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "run_duration_seconds",
			Help:      "Duration of a full pass over the symbol list",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		LastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "last_run_success_timestamp_seconds",
			Help:      "Unix time of the last run without symbol failures",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "API requests by route and status code",
		}, []string{"route", "code"}),
	}

	m.Registry.MustRegister(
		m.BarsFetched,
		m.PointsWritten,
		m.SymbolFailures,
		m.RunDuration,
		m.LastRunSuccess,
		m.HTTPRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRun records a finished ingestion pass.
func (m *Metrics) ObserveRun(started time.Time, failures int) {
	m.RunDuration.Observe(time.Since(started).Seconds())
	if failures == 0 {
		m.LastRunSuccess.SetToCurrentTime()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
