package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Export results used as label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Span export metrics
	ExportBatches   *prometheus.CounterVec
	ExportedSpans   *prometheus.CounterVec
	ExportBatchSize prometheus.Histogram
	ExportDuration  prometheus.Histogram

	// gRPC metrics (collector sink)
	GRPCCalls     *prometheus.CounterVec
	GRPCDuration  *prometheus.HistogramVec
	ReceivedSpans prometheus.Counter

	startTime time.Time
}

// NewMetrics creates a metrics collector backed by its own registry, so
// several instances can coexist in one process.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "demo_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "demo_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "route"},
		),

		ExportBatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "demo_span_export_batches_total",
				Help: "Total number of span batches handed to the exporter",
			},
			[]string{"result"},
		),
		ExportedSpans: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "demo_span_export_spans_total",
				Help: "Total number of spans handed to the exporter",
			},
			[]string{"result"},
		),
		ExportBatchSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "demo_span_export_batch_size",
				Help:    "Number of spans per exported batch",
				Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 512},
			},
		),
		ExportDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "demo_span_export_duration_seconds",
				Help:    "Span export call duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
		),

		GRPCCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "demo_grpc_calls_total",
				Help: "Total number of gRPC calls served",
			},
			[]string{"method", "code"},
		),
		GRPCDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "demo_grpc_duration_seconds",
				Help:    "gRPC call duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method"},
		),
		ReceivedSpans: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "demo_collector_received_spans_total",
				Help: "Total number of spans received by the local collector",
			},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "demo_uptime_seconds",
			Help: "Process uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, status).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordExport records one exporter call carrying spans spans.
func (m *Metrics) RecordExport(spans int, duration time.Duration, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	m.ExportBatches.WithLabelValues(result).Inc()
	m.ExportedSpans.WithLabelValues(result).Add(float64(spans))
	m.ExportBatchSize.Observe(float64(spans))
	m.ExportDuration.Observe(duration.Seconds())
}

// RecordGRPCCall records a gRPC call
func (m *Metrics) RecordGRPCCall(method, code string, duration time.Duration) {
	m.GRPCCalls.WithLabelValues(method, code).Inc()
	m.GRPCDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// AddReceivedSpans counts spans accepted by the local collector.
func (m *Metrics) AddReceivedSpans(n int) {
	m.ReceivedSpans.Add(float64(n))
}
