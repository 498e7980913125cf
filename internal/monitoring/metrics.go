package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the prometheus collectors of the service. Collectors live
// in a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	turns              *prometheus.CounterVec
	assistantOrders    prometheus.Counter
	assistantValue     prometheus.Histogram
	transcriptFailures prometheus.Counter
	checkouts          prometheus.Counter
	requests           *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
}

// NewMetrics creates and registers the service collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bistro_dialogue_turns_total",
				Help: "Assistant turns by resulting phase and recognised intent",
			},
			[]string{"phase", "intent"},
		),
		assistantOrders: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bistro_assistant_orders_total",
			Help: "Orders confirmed through the ordering assistant",
		}),
		assistantValue: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bistro_assistant_order_value_dollars",
			Help:    "Value of orders confirmed through the ordering assistant",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		}),
		transcriptFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bistro_transcript_write_failures_total",
			Help: "Transcript turns that could not be persisted",
		}),
		checkouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bistro_checkouts_total",
			Help: "Orders placed at checkout",
		}),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bistro_http_requests_total",
				Help: "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bistro_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	m.registry.MustRegister(
		m.turns,
		m.assistantOrders,
		m.assistantValue,
		m.transcriptFailures,
		m.checkouts,
		m.requests,
		m.requestDuration,
	)
	return m
}

// Registry exposes the registry for additional collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveTurn counts a processed assistant turn
func (m *Metrics) ObserveTurn(phase, intent string) {
	m.turns.WithLabelValues(phase, intent).Inc()
}

// ObserveOrder records an order confirmed through the assistant
func (m *Metrics) ObserveOrder(lines int, total float64) {
	m.assistantOrders.Inc()
	m.assistantValue.Observe(total)
}

// TranscriptFailed counts a dropped transcript write
func (m *Metrics) TranscriptFailed(error) {
	m.transcriptFailures.Inc()
}

// CheckoutCompleted counts a placed order
func (m *Metrics) CheckoutCompleted() {
	m.checkouts.Inc()
}

// TrackGauge registers a gauge whose value is read from fn at scrape time
func (m *Metrics) TrackGauge(name, help string, fn func() float64) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: name,
		Help: help,
	}, fn))
}

// Middleware records request counts and latency per route
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
