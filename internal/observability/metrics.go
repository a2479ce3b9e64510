package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's prometheus collectors on a private registry.
type Metrics struct {
	registry        *prometheus.Registry
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorCount      *prometheus.CounterVec
	sales           *prometheus.CounterVec
	rejections      *prometheus.CounterVec
}

// NewMetrics initializes and registers collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"path", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errorCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Error responses by route, method and domain code.",
		}, []string{"path", "method", "code"}),
		sales: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ticketing_seats_total",
			Help: "Seats reserved or released by the inventory ledger.",
		}, []string{"kind", "op"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ticketing_rejections_total",
			Help: "Purchase and cancellation attempts rejected, by domain code.",
		}, []string{"op", "code"}),
	}
	m.registry.MustRegister(m.requestCount, m.requestDuration, m.errorCount, m.sales, m.rejections)
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(path, method, code).Inc()
}

// RecordSeats counts seats moved through the ledger. kind is ticket or
// registration, op is reserve or release.
func (m *Metrics) RecordSeats(kind, op string, seats int) {
	if m == nil || seats <= 0 {
		return
	}
	m.sales.WithLabelValues(kind, op).Add(float64(seats))
}

// RecordRejection counts a workflow failure by its domain code.
func (m *Metrics) RecordRejection(op, code string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(op, code).Inc()
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
