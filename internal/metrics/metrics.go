// Package metrics exposes Prometheus instrumentation for the monitor.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the signal engine.
type Metrics struct {
	CandlesTotal    *prometheus.CounterVec // labels: asset
	AlertsTotal     *prometheus.CounterVec // labels: kind
	AlertsDeduped   prometheus.Counter
	ComputeDur      prometheus.Histogram
	WindowSize      *prometheus.GaugeVec // labels: asset
	PivotRecomputes prometheus.Counter
	TimeframeResets prometheus.Counter
	WSClients       prometheus.Gauge
	SinkErrors      *prometheus.CounterVec // labels: sink

	registry *prometheus.Registry
}

// NewMetrics registers and returns all Prometheus metrics on a private
// registry, so tests can create multiple instances without collisions.
func NewMetrics() *Metrics {
	m := &Metrics{
		CandlesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "monitor_candles_total",
			Help: "Total candles processed per asset",
		}, []string{"asset"}),
		AlertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "monitor_alerts_total",
			Help: "Total alerts accepted per kind",
		}, []string{"kind"}),
		AlertsDeduped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "monitor_alerts_deduped_total",
			Help: "Alerts rejected as duplicates at the collection boundary",
		}),
		ComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "monitor_compute_duration_seconds",
			Help:    "Per-tick indicator + rule evaluation latency",
			Buckets: []float64{0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005},
		}),
		WindowSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "monitor_window_size",
			Help: "Current candle window length per asset",
		}, []string{"asset"}),
		PivotRecomputes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "monitor_pivot_recomputes_total",
			Help: "Pivot level recompute passes",
		}),
		TimeframeResets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "monitor_timeframe_resets_total",
			Help: "Timeframe switches (hard resets)",
		}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "monitor_ws_clients",
			Help: "Connected WebSocket clients",
		}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "monitor_sink_errors_total",
			Help: "Alert delivery failures per sink",
		}, []string{"sink"}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.CandlesTotal,
		m.AlertsTotal,
		m.AlertsDeduped,
		m.ComputeDur,
		m.WindowSize,
		m.PivotRecomputes,
		m.TimeframeResets,
		m.WSClients,
		m.SinkErrors,
	)

	return m
}

// Handler returns the scrape handler for this metrics instance.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve runs a metrics-only HTTP listener until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}
