// Package metrics exposes Prometheus instrumentation for analysis runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the analysis pipeline.
type Metrics struct {
	AnalysesTotal    *prometheus.CounterVec // labels: result=ok|error
	AnalysisDuration prometheus.Histogram
	FetchErrors      *prometheus.CounterVec // labels: source
	BarsFetched      prometheus.Counter
	TradesSimulated  *prometheus.CounterVec // labels: exit_reason
	SignalScore      *prometheus.GaugeVec   // labels: ticker
	ModelMSE         *prometheus.GaugeVec   // labels: ticker

	registry *prometheus.Registry
}

// NewMetrics creates the metrics on their own registry so several instances
// (tests, CLI, server) never collide on the global one.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocksignal_analyses_total",
			Help: "Total analysis runs by result",
		}, []string{"result"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stocksignal_analysis_duration_seconds",
			Help:    "End-to-end analysis latency including the price fetch",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocksignal_fetch_errors_total",
			Help: "Price feed failures by source",
		}, []string{"source"}),
		BarsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stocksignal_bars_fetched_total",
			Help: "Total daily bars received from price feeds",
		}),
		TradesSimulated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocksignal_backtest_trades_total",
			Help: "Simulated trades by exit reason",
		}, []string{"exit_reason"}),
		SignalScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stocksignal_latest_score",
			Help: "Signal score of the most recent bar",
		}, []string{"ticker"}),
		ModelMSE: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stocksignal_model_mse",
			Help: "Held-out MSE of the selected price model",
		}, []string{"ticker"}),
		registry: reg,
	}

	reg.MustRegister(
		m.AnalysesTotal,
		m.AnalysisDuration,
		m.FetchErrors,
		m.BarsFetched,
		m.TradesSimulated,
		m.SignalScore,
		m.ModelMSE,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the metrics live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveAnalysis records one finished run.
func (m *Metrics) ObserveAnalysis(start time.Time, err error) {
	if m == nil {
		return
	}
	m.AnalysisDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.AnalysesTotal.WithLabelValues("error").Inc()
		return
	}
	m.AnalysesTotal.WithLabelValues("ok").Inc()
}

// ObserveFetchError counts a failed price fetch.
func (m *Metrics) ObserveFetchError(source string) {
	if m == nil {
		return
	}
	m.FetchErrors.WithLabelValues(source).Inc()
}
