package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/sawpanic/techrun/internal/models"
	"github.com/sawpanic/techrun/internal/pipeline"
)

// Run outcomes
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Cache operation outcomes
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
	CacheStore = "stored"
)

// Registry holds all Prometheus metrics for techrun. Each Registry owns its
// own prometheus.Registry so tests and embedded servers do not collide.
type Registry struct {
	reg *prometheus.Registry

	StageDuration *prometheus.HistogramVec
	RunDuration   prometheus.Histogram
	Runs          *prometheus.CounterVec
	Signals       *prometheus.GaugeVec
	HighConv      prometheus.Gauge
	Plays         prometheus.Gauge
	Warnings      *prometheus.CounterVec
	LastRun       prometheus.Gauge

	CacheOps    *prometheus.CounterVec
	StoreErrors *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	WSClients    prometheus.Gauge
}

// NewRegistry creates and registers every techrun metric
func NewRegistry() *Registry {
	m := &Registry{
		reg: prometheus.NewRegistry(),

		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "techrun_stage_duration_seconds",
				Help:    "Duration of each pipeline stage in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
			[]string{"stage"},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "techrun_run_duration_seconds",
				Help:    "End-to-end duration of a run including load and publish",
				Buckets: prometheus.DefBuckets,
			},
		),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "techrun_runs_total",
				Help: "Total pipeline runs by result",
			},
			[]string{"result"},
		),
		Signals: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "techrun_signals",
				Help: "Signals in the latest run by recommendation",
			},
			[]string{"recommendation"},
		),
		HighConv: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "techrun_high_conviction_signals",
				Help: "Signals with conviction of at least 0.70 in the latest run",
			},
		),
		Plays: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "techrun_second_order_plays",
				Help: "Second-order plays in the latest run",
			},
		),
		Warnings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "techrun_warnings_total",
				Help: "Recovered per-company anomalies by kind",
			},
			[]string{"kind"},
		),
		LastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "techrun_last_run_timestamp_seconds",
				Help: "Unix time of the last successful run",
			},
		),
		CacheOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "techrun_cache_operations_total",
				Help: "Cache operations by backend, operation and result",
			},
			[]string{"backend", "op", "result"},
		),
		StoreErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "techrun_store_errors_total",
				Help: "Run store failures by operation",
			},
			[]string{"op"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "techrun_http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "techrun_http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		WSClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "techrun_ws_clients",
				Help: "Connected run-event websocket clients",
			},
		),
	}

	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.StageDuration, m.RunDuration, m.Runs, m.Signals, m.HighConv, m.Plays,
		m.Warnings, m.LastRun, m.CacheOps, m.StoreErrors,
		m.HTTPRequests, m.HTTPDuration, m.WSClients,
	)
	return m
}

// ObserveStage records one pipeline stage timing
func (m *Registry) ObserveStage(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordRun records a finished run. res is nil on failure.
func (m *Registry) RecordRun(res *pipeline.Result, d time.Duration) {
	m.RunDuration.Observe(d.Seconds())
	if res == nil {
		m.Runs.WithLabelValues(ResultError).Inc()
		return
	}
	m.Runs.WithLabelValues(ResultSuccess).Inc()

	m.Signals.Reset()
	for _, rec := range models.Recommendations {
		m.Signals.WithLabelValues(string(rec)).Set(float64(res.Summary.Recommendations[rec]))
	}
	m.HighConv.Set(float64(res.Summary.HighConviction))
	m.Plays.Set(float64(res.Summary.Plays))
	for _, w := range res.Warnings {
		m.Warnings.WithLabelValues(string(w.Kind)).Inc()
	}
	m.LastRun.Set(float64(res.AsOf.Unix()))

	log.Debug().Str("run_id", res.RunID).Msg("Run metrics recorded")
}

// RecordCache records one cache operation
func (m *Registry) RecordCache(backend, op, result string) {
	m.CacheOps.WithLabelValues(backend, op, result).Inc()
}

// RecordStoreError records one run store failure
func (m *Registry) RecordStoreError(op string) {
	m.StoreErrors.WithLabelValues(op).Inc()
}

// RecordHTTP records one served request
func (m *Registry) RecordHTTP(route string, code int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Gatherer exposes the underlying registry
func (m *Registry) Gatherer() prometheus.Gatherer {
	return m.reg
}

// Handler serves the registry in the Prometheus exposition format
func (m *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
