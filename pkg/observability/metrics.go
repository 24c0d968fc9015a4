package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsConfig configures the metrics provider
type MetricsConfig struct {
	// Service identification
	ServiceName    string
	ServiceVersion string
	Environment    string

	// MetricsAddr is the listen address for the metrics endpoint. Start
	// refuses to run without one; leave it empty and use Handler to mount
	// the endpoint elsewhere.
	MetricsAddr string
	// MetricsPath is the HTTP path for the metrics endpoint (default: /metrics)
	MetricsPath string

	// Namespace is the Prometheus namespace (default: sketchup_mcp)
	Namespace string
	// Subsystem is the Prometheus subsystem
	Subsystem string
	// DurationBuckets are the latency histogram buckets in milliseconds
	DurationBuckets []float64
	// ChunkBuckets are the buckets for reads-per-message
	ChunkBuckets []float64

	// ConstLabels are added to all metrics
	ConstLabels prometheus.Labels

	// Registry receives the collectors. Defaults to a fresh registry so
	// multiple providers can coexist in one process.
	Registry *prometheus.Registry
}

// PrometheusMetricsProvider exposes the bridge's operational metrics. It
// implements sketchup.Stats, so a single provider wired into the session,
// the engine, and the caller middleware covers the whole relay path.
type PrometheusMetricsProvider struct {
	config   MetricsConfig
	registry *prometheus.Registry
	server   *http.Server

	// Relay metrics
	callDuration *prometheus.HistogramVec
	callTotal    *prometheus.CounterVec
	errorTotal   *prometheus.CounterVec
	retryTotal   *prometheus.CounterVec

	// Connection metrics
	connected     prometheus.Gauge
	connectsTotal prometheus.Counter
	receiveChunks prometheus.Histogram
}

// NewMetricsProvider creates a new Prometheus metrics provider
func NewMetricsProvider(config MetricsConfig) (*PrometheusMetricsProvider, error) {
	// Set defaults
	if config.Namespace == "" {
		config.Namespace = "sketchup_mcp"
	}
	if config.MetricsPath == "" {
		config.MetricsPath = "/metrics"
	}
	if config.DurationBuckets == nil {
		// Milliseconds. SketchUp operations range from instant selection
		// queries to minute-long boolean cuts.
		config.DurationBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000, 120000}
	}
	if config.ChunkBuckets == nil {
		config.ChunkBuckets = []float64{1, 2, 5, 10, 25, 50, 100}
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}

	// Add service labels to const labels
	if config.ConstLabels == nil {
		config.ConstLabels = prometheus.Labels{}
	}
	if config.ServiceName != "" {
		config.ConstLabels["service"] = config.ServiceName
	}
	if config.ServiceVersion != "" {
		config.ConstLabels["version"] = config.ServiceVersion
	}
	if config.Environment != "" {
		config.ConstLabels["environment"] = config.Environment
	}

	provider := &PrometheusMetricsProvider{
		config:   config,
		registry: config.Registry,
	}

	provider.initializeMetrics()

	if err := provider.registerMetrics(); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	return provider, nil
}

// initializeMetrics creates all metric collectors
func (p *PrometheusMetricsProvider) initializeMetrics() {
	p.callDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   p.config.Namespace,
			Subsystem:   p.config.Subsystem,
			Name:        "call_duration_milliseconds",
			Help:        "Duration of relayed SketchUp operations in milliseconds",
			Buckets:     p.config.DurationBuckets,
			ConstLabels: p.config.ConstLabels,
		},
		[]string{"tool", "status"},
	)

	p.callTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   p.config.Namespace,
			Subsystem:   p.config.Subsystem,
			Name:        "call_total",
			Help:        "Total number of relayed SketchUp operations",
			ConstLabels: p.config.ConstLabels,
		},
		[]string{"tool", "status"},
	)

	p.errorTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   p.config.Namespace,
			Subsystem:   p.config.Subsystem,
			Name:        "error_total",
			Help:        "Total number of failed operations by error code name",
			ConstLabels: p.config.ConstLabels,
		},
		[]string{"tool", "code"},
	)

	p.retryTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   p.config.Namespace,
			Subsystem:   p.config.Subsystem,
			Name:        "retry_total",
			Help:        "Total number of reconnect-and-resend attempts",
			ConstLabels: p.config.ConstLabels,
		},
		[]string{"tool"},
	)

	p.connected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   p.config.Namespace,
			Subsystem:   p.config.Subsystem,
			Name:        "connected",
			Help:        "Whether a SketchUp connection is currently open (1=connected, 0=disconnected)",
			ConstLabels: p.config.ConstLabels,
		},
	)

	p.connectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   p.config.Namespace,
			Subsystem:   p.config.Subsystem,
			Name:        "connection_opens_total",
			Help:        "Total number of successful dials to the SketchUp extension",
			ConstLabels: p.config.ConstLabels,
		},
	)

	p.receiveChunks = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   p.config.Namespace,
			Subsystem:   p.config.Subsystem,
			Name:        "receive_chunks_per_message",
			Help:        "Socket reads needed to assemble one framed response",
			Buckets:     p.config.ChunkBuckets,
			ConstLabels: p.config.ConstLabels,
		},
	)
}

// registerMetrics registers all metrics with the registry
func (p *PrometheusMetricsProvider) registerMetrics() error {
	collectors := []prometheus.Collector{
		p.callDuration,
		p.callTotal,
		p.errorTotal,
		p.retryTotal,
		p.connected,
		p.connectsTotal,
		p.receiveChunks,
	}

	for _, collector := range collectors {
		if err := p.registry.Register(collector); err != nil {
			// Tolerate collectors already present in a shared registry.
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}

	return nil
}

// RecordCall records one relayed operation with its outcome
func (p *PrometheusMetricsProvider) RecordCall(tool, status string, duration time.Duration) {
	ms := float64(duration.Milliseconds())
	p.callDuration.WithLabelValues(tool, status).Observe(ms)
	p.callTotal.WithLabelValues(tool, status).Inc()
}

// RecordCallError records one failed operation by error code name
func (p *PrometheusMetricsProvider) RecordCallError(tool, code string) {
	p.errorTotal.WithLabelValues(tool, code).Inc()
}

// ConnectionOpened implements sketchup.Stats
func (p *PrometheusMetricsProvider) ConnectionOpened() {
	p.connected.Set(1)
	p.connectsTotal.Inc()
}

// ConnectionClosed implements sketchup.Stats
func (p *PrometheusMetricsProvider) ConnectionClosed() {
	p.connected.Set(0)
}

// RetryScheduled implements sketchup.Stats
func (p *PrometheusMetricsProvider) RetryScheduled(operation string) {
	p.retryTotal.WithLabelValues(operation).Inc()
}

// ReceiveChunks implements sketchup.Stats
func (p *PrometheusMetricsProvider) ReceiveChunks(n int) {
	p.receiveChunks.Observe(float64(n))
}

// Handler returns an HTTP handler serving the provider's registry, for
// callers that mount the endpoint on their own server.
func (p *PrometheusMetricsProvider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Start serves the metrics endpoint on the configured address
func (p *PrometheusMetricsProvider) Start(ctx context.Context) error {
	if p.config.MetricsAddr == "" {
		return fmt.Errorf("metrics address not configured")
	}

	mux := http.NewServeMux()
	mux.Handle(p.config.MetricsPath, p.Handler())

	p.server = &http.Server{
		Addr:    p.config.MetricsAddr,
		Handler: mux,
	}

	go func() {
		_ = p.server.ListenAndServe()
	}()

	return nil
}

// Shutdown gracefully shuts down the metrics server
func (p *PrometheusMetricsProvider) Shutdown(ctx context.Context) error {
	if p.server != nil {
		return p.server.Shutdown(ctx)
	}
	return nil
}
