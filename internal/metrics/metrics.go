package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Handler struct {
	namespace string

	OptionsValidationsTotal   *prometheus.CounterVec
	OptionsValidationFailures *prometheus.CounterVec
	OptionsReplacementsTotal  *prometheus.CounterVec
	HTTPRequestsTotal         *prometheus.CounterVec
	HTTPRequestLatency        *prometheus.HistogramVec
	GRPCRequestsTotal         *prometheus.CounterVec
	GRPCRequestLatency        *prometheus.HistogramVec
}

type Options struct {
	// Additional labels necessary
}

func New(name string) (*Handler, error) {
	return &Handler{
		namespace: name,
		OptionsValidationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: name,
			Name:      "options_validations_total",
			Help:      "The total number of option construction attempts",
		}, []string{"result"}),
		OptionsValidationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: name,
			Name:      "options_validation_failures_total",
			Help:      "The total number of option validation failures",
		}, []string{"field", "kind"}),
		OptionsReplacementsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: name,
			Name:      "options_replacements_total",
			Help:      "The total number of options document replacements",
		}, []string{"status", "source"}),
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: name,
			Name:      "http_requests_total",
			Help:      "The total number of http requests received",
		}, []string{"path", "method", "status"}),
		HTTPRequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: name,
			Name:      "http_request_latency_seconds",
			Help:      "The latency of http requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
		GRPCRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: name,
			Name:      "grpc_requests_total",
			Help:      "The total number of grpc requests received",
		}, []string{"method", "status"}),
		GRPCRequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: name,
			Name:      "grpc_request_latency_seconds",
			Help:      "The latency of grpc requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}, nil
}

// IncOptionsValidationsTotal increments the validation attempts counter
func (h *Handler) IncOptionsValidationsTotal(result string) {
	h.OptionsValidationsTotal.WithLabelValues(result).Inc()
}

// IncOptionsValidationFailures increments the validation failures counter
func (h *Handler) IncOptionsValidationFailures(field, kind string) {
	h.OptionsValidationFailures.WithLabelValues(field, kind).Inc()
}

// IncOptionsReplacementsTotal increments the replacements counter
func (h *Handler) IncOptionsReplacementsTotal(status, source string) {
	h.OptionsReplacementsTotal.WithLabelValues(status, source).Inc()
}

// IncHTTPRequestsTotal increments the http requests counter
func (h *Handler) IncHTTPRequestsTotal(path, method, status string) {
	h.HTTPRequestsTotal.WithLabelValues(path, method, status).Inc()
}

// ObserveHTTPRequestLatency records the latency of an http request
func (h *Handler) ObserveHTTPRequestLatency(path string, duration time.Duration) {
	h.HTTPRequestLatency.WithLabelValues(path).Observe(duration.Seconds())
}

// IncGRPCRequestsTotal increments the grpc requests counter
func (h *Handler) IncGRPCRequestsTotal(method, status string) {
	h.GRPCRequestsTotal.WithLabelValues(method, status).Inc()
}

// ObserveGRPCRequestLatency records the latency of a grpc request
func (h *Handler) ObserveGRPCRequestLatency(method string, duration time.Duration) {
	h.GRPCRequestLatency.WithLabelValues(method).Observe(duration.Seconds())
}

// Counter represents a Prometheus counter
type Counter struct {
	*prometheus.CounterVec
	labels []string
}

// Histogram represents a Prometheus histogram
type Histogram struct {
	*prometheus.HistogramVec
	labels []string
}

// Gauge represents a Prometheus gauge
type Gauge struct {
	*prometheus.GaugeVec
	labels []string
}

// NewCounter creates a new counter metric with the given label names
func (h *Handler) NewCounter(name, help string, labels ...string) *Counter {
	counter := promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: h.namespace,
		Name:      name,
		Help:      help,
	}, labels)
	return &Counter{counter, labels}
}

// NewHistogram creates a new histogram metric with the given label names
func (h *Handler) NewHistogram(name, help string, labels ...string) *Histogram {
	histogram := promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: h.namespace,
		Name:      name,
		Help:      help,
		Buckets:   prometheus.DefBuckets,
	}, labels)
	return &Histogram{histogram, labels}
}

// NewGauge creates a new gauge metric with the given label names
func (h *Handler) NewGauge(name, help string, labels ...string) *Gauge {
	gauge := promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: h.namespace,
		Name:      name,
		Help:      help,
	}, labels)
	return &Gauge{gauge, labels}
}

// Inc increments the counter
func (c *Counter) Inc(labelValues ...string) {
	c.CounterVec.WithLabelValues(labelValues...).Inc()
}

// Add adds the given value to the counter
func (c *Counter) Add(delta float64, labelValues ...string) {
	c.CounterVec.WithLabelValues(labelValues...).Add(delta)
}

// Observe adds a single observation to the histogram
func (h *Histogram) Observe(value float64, labelValues ...string) {
	h.HistogramVec.WithLabelValues(labelValues...).Observe(value)
}

// Set sets the gauge value
func (g *Gauge) Set(value float64, labelValues ...string) {
	g.GaugeVec.WithLabelValues(labelValues...).Set(value)
}

// Inc increments the gauge
func (g *Gauge) Inc(labelValues ...string) {
	g.GaugeVec.WithLabelValues(labelValues...).Inc()
}

// Dec decrements the gauge
func (g *Gauge) Dec(labelValues ...string) {
	g.GaugeVec.WithLabelValues(labelValues...).Dec()
}
