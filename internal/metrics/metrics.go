// Package metrics exposes Prometheus instruments for the HTTP layer and the
// order lifecycle.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

func NewServerMetrics(reg prometheus.Registerer) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})

	reg.MustRegister(requests, latency)
	return &ServerMetrics{Requests: requests, LatencyMS: latency}
}

// Middleware records one request sample per handled route.
func (m *ServerMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
	}
}

// Orders counts order outcomes. A nil *Orders records nothing.
type Orders struct {
	placed        prometheus.Counter
	refused       *prometheus.CounterVec
	reviewed      *prometheus.CounterVec
	notifyFailure prometheus.Counter
}

func NewOrders(reg prometheus.Registerer) *Orders {
	o := &Orders{
		placed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "placed_total",
			Help:      "Orders persisted by intake.",
		}),
		refused: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "refused_total",
			Help:      "Checkout submissions refused at intake, by reason.",
		}, []string{"reason"}),
		reviewed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "reviewed_total",
			Help:      "Review transitions applied, by resulting status.",
		}, []string{"status"}),
		notifyFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "notify_failures_total",
			Help:      "Order notifications that could not be delivered.",
		}),
	}
	reg.MustRegister(o.placed, o.refused, o.reviewed, o.notifyFailure)
	return o
}

func (o *Orders) Placed() {
	if o != nil {
		o.placed.Inc()
	}
}

func (o *Orders) Refused(reason string) {
	if o != nil {
		o.refused.WithLabelValues(reason).Inc()
	}
}

func (o *Orders) Reviewed(status string) {
	if o != nil {
		o.reviewed.WithLabelValues(status).Inc()
	}
}

func (o *Orders) NotifyFailed() {
	if o != nil {
		o.notifyFailure.Inc()
	}
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
