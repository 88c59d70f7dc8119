package middleware

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/progressive/internal/errors"
	"github.com/vango-dev/progressive/pkg/render"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "progressive").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "progressive",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus metrics for rendering requests and streams.
//
// Metrics collected:
//   - progressive_requests_total: requests by route and status
//   - progressive_request_duration_seconds: request duration by route
//   - progressive_render_errors_total: failed renders by route and error code
//   - progressive_stream_chunks_total: chunks delivered to clients
//   - progressive_stream_bytes_total: bytes delivered to clients
//   - progressive_active_streams: streams currently in flight
//   - progressive_streams_cancelled_total: streams abandoned by the client
//   - progressive_websocket_errors_total: WebSocket errors by type
//   - progressive_pool_hits_total, progressive_pool_misses_total,
//     progressive_pool_in_use, progressive_pool_idle: transaction pool
//     state, once ObservePool is called
type Metrics struct {
	config  MetricsConfig
	factory promauto.Factory

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	renderErrors     *prometheus.CounterVec
	chunksTotal      prometheus.Counter
	bytesTotal       prometheus.Counter
	activeStreams    prometheus.Gauge
	cancelledStreams prometheus.Counter
	wsErrors         *prometheus.CounterVec
}

// NewMetrics registers the metrics with the configured registry.
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	m := middleware.NewMetrics(middleware.WithRegistry(reg))
//	m.ObservePool(renderer.Pool())
//	r.Use(m.Handler)
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		config:  config,
		factory: factory,

		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "requests_total",
			Help:        "Total number of render requests",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "request_duration_seconds",
			Help:        "Render request duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route"}),

		renderErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_errors_total",
			Help:        "Total number of failed renders",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "code"}),

		chunksTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "stream_chunks_total",
			Help:        "Total number of chunks delivered to clients",
			ConstLabels: config.ConstLabels,
		}),

		bytesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "stream_bytes_total",
			Help:        "Total number of markup bytes delivered to clients",
			ConstLabels: config.ConstLabels,
		}),

		activeStreams: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_streams",
			Help:        "Number of streams currently being delivered",
			ConstLabels: config.ConstLabels,
		}),

		cancelledStreams: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "streams_cancelled_total",
			Help:        "Total number of streams abandoned before completion",
			ConstLabels: config.ConstLabels,
		}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_errors_total",
			Help:        "Total WebSocket errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// ObservePool exports the state of a renderer's transaction pool. Values
// are read from the pool at scrape time.
func (m *Metrics) ObservePool(pool *render.Pool) {
	c := m.config
	m.factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace:   c.Namespace,
		Subsystem:   c.Subsystem,
		Name:        "pool_hits_total",
		Help:        "Transactions served from the idle pool",
		ConstLabels: c.ConstLabels,
	}, func() float64 { return float64(pool.Stats().Hits) })

	m.factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace:   c.Namespace,
		Subsystem:   c.Subsystem,
		Name:        "pool_misses_total",
		Help:        "Transactions allocated because the pool was empty",
		ConstLabels: c.ConstLabels,
	}, func() float64 { return float64(pool.Stats().Misses) })

	m.factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   c.Namespace,
		Subsystem:   c.Subsystem,
		Name:        "pool_in_use",
		Help:        "Transactions currently held by renders",
		ConstLabels: c.ConstLabels,
	}, func() float64 { return float64(pool.Stats().InUse) })

	m.factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   c.Namespace,
		Subsystem:   c.Subsystem,
		Name:        "pool_idle",
		Help:        "Idle transactions available for reuse",
		ConstLabels: c.ConstLabels,
	}, func() float64 { return float64(pool.Stats().Idle) })
}

// Handler is chi-compatible middleware that counts and times requests by
// route pattern.
func (m *Metrics) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := routePattern(r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}

// StreamStarted marks a stream as in flight.
func (m *Metrics) StreamStarted() {
	m.activeStreams.Inc()
}

// StreamFinished records what a stream delivered. cancelled is true when
// the client went away before the stream was exhausted.
func (m *Metrics) StreamFinished(chunks int, bytes int64, cancelled bool) {
	m.activeStreams.Dec()
	m.chunksTotal.Add(float64(chunks))
	m.bytesTotal.Add(float64(bytes))
	if cancelled {
		m.cancelledStreams.Inc()
	}
}

// RecordRenderError counts a failed render under the route of r.
func (m *Metrics) RecordRenderError(r *http.Request, err error) {
	m.renderErrors.WithLabelValues(routePattern(r), errorCode(err)).Inc()
}

// RecordWebSocketError records a WebSocket error.
func (m *Metrics) RecordWebSocketError(errorType string) {
	m.wsErrors.WithLabelValues(errorType).Inc()
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// errorCode returns a low-cardinality label for err.
func errorCode(err error) string {
	var coded *errors.Error
	switch {
	case stderrors.As(err, &coded) && coded.Code != "":
		return coded.Code
	case stderrors.Is(err, context.Canceled):
		return "cancelled"
	case stderrors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "internal"
	}
}
