package observability

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the MCP server and the backend
// clients behind it.
type Metrics struct {
	// HTTP metrics for the MCP endpoint
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Tool metrics
	toolCallsTotal   *prometheus.CounterVec
	toolCallDuration *prometheus.HistogramVec

	// Backend (SentinelOne console) metrics
	backendRequestsTotal   *prometheus.CounterVec
	backendRequestDuration *prometheus.HistogramVec
	backendRetriesTotal    *prometheus.CounterVec

	// Schema compatibility metrics
	schemaFallbacksTotal *prometheus.CounterVec
	capabilityEnabled    *prometheus.GaugeVec

	// System metrics
	systemUptime prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics on the default
// registerer.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates all metrics on a specific registerer. Tests use
// this with a fresh registry to avoid duplicate registration.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinelmcp_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sentinelmcp_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path", "status"},
		),
		httpRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sentinelmcp_http_requests_in_flight",
				Help: "Current number of HTTP requests being processed",
			},
		),
		toolCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinelmcp_tool_calls_total",
				Help: "Total number of MCP tool calls",
			},
			[]string{"tool", "outcome"},
		),
		toolCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sentinelmcp_tool_call_duration_seconds",
				Help:    "MCP tool call latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"tool"},
		),
		backendRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinelmcp_backend_requests_total",
				Help: "Total number of requests sent to the SentinelOne console",
			},
			[]string{"domain", "operation", "status"},
		),
		backendRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sentinelmcp_backend_request_duration_seconds",
				Help:    "Backend request latency in seconds",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"domain", "operation"},
		),
		backendRetriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinelmcp_backend_retries_total",
				Help: "Total number of transient-failure retries against the backend",
			},
			[]string{"domain"},
		),
		schemaFallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinelmcp_schema_fallbacks_total",
				Help: "Total number of schema-compatibility query downgrades",
			},
			[]string{"domain", "capability"},
		),
		capabilityEnabled: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sentinelmcp_capability_enabled",
				Help: "Whether an optional backend capability is currently enabled (1) or disabled (0)",
			},
			[]string{"domain", "capability"},
		),
		systemUptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sentinelmcp_uptime_seconds",
				Help: "Server uptime in seconds",
			},
		),
	}
}

// MetricsMiddleware returns a Fiber middleware that records HTTP metrics.
func (m *Metrics) MetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}

		m.httpRequestsInFlight.Inc()
		defer m.httpRequestsInFlight.Dec()

		start := time.Now()
		err := c.Next()
		duration := time.Since(start).Seconds()

		status := statusClass(c.Response().StatusCode())
		m.httpRequestsTotal.WithLabelValues(c.Method(), c.Route().Path, status).Inc()
		m.httpRequestDuration.WithLabelValues(c.Method(), c.Route().Path, status).Observe(duration)

		return err
	}
}

// RecordToolCall records the outcome and latency of one MCP tool call.
func (m *Metrics) RecordToolCall(tool string, duration time.Duration, isError bool) {
	outcome := "ok"
	if isError {
		outcome = "error"
	}
	m.toolCallsTotal.WithLabelValues(tool, outcome).Inc()
	m.toolCallDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordBackendRequest records one round trip against the backend API.
func (m *Metrics) RecordBackendRequest(domain, operation string, statusCode int, duration time.Duration) {
	m.backendRequestsTotal.WithLabelValues(domain, operation, statusClass(statusCode)).Inc()
	m.backendRequestDuration.WithLabelValues(domain, operation).Observe(duration.Seconds())
}

// RecordBackendRetry records one retried transient failure.
func (m *Metrics) RecordBackendRetry(domain string) {
	m.backendRetriesTotal.WithLabelValues(domain).Inc()
}

// RecordSchemaFallback records a query downgrade caused by a schema error.
func (m *Metrics) RecordSchemaFallback(domain, capability string) {
	m.schemaFallbacksTotal.WithLabelValues(domain, capability).Inc()
	m.capabilityEnabled.WithLabelValues(domain, capability).Set(0)
}

// SetCapabilityEnabled publishes the current state of a capability flag.
func (m *Metrics) SetCapabilityEnabled(domain, capability string, enabled bool) {
	v := 0.0
	if enabled {
		v = 1.0
	}
	m.capabilityEnabled.WithLabelValues(domain, capability).Set(v)
}

// UpdateUptime updates the uptime gauge.
func (m *Metrics) UpdateUptime(startTime time.Time) {
	m.systemUptime.Set(time.Since(startTime).Seconds())
}

// Handler returns a Fiber handler serving the Prometheus scrape endpoint.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

// statusClass converts an HTTP status code to its class label.
func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "unknown"
	}
}
