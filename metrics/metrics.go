// Package metrics exposes prometheus collectors for the API, storage and the model breaker.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/NethermindEth/aigent-launchpad/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "aigent"

// breaker states as reported by gobreaker
var breakerStates = map[string]float64{"closed": 0, "half-open": 1, "open": 2}

type Metrics struct {
	Registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"route", "method"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served.",
		}),
	}
	reg.MustRegister(
		m.requests, m.duration, m.inflight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Middleware records request counts and latency per route template
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.inflight.Inc()
		defer m.inflight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// WatchDB exports the badger operation counters
func (m *Metrics) WatchDB(db *storage.DBStorage) {
	if db == nil {
		return
	}
	ops := map[string]func(storage.DBMetrics) int64{
		"put":        func(s storage.DBMetrics) int64 { return s.PutCount },
		"get":        func(s storage.DBMetrics) int64 { return s.GetCount },
		"delete":     func(s storage.DBMetrics) int64 { return s.DeleteCount },
		"get_prefix": func(s storage.DBMetrics) int64 { return s.GetByPrefixCount },
		"error":      func(s storage.DBMetrics) int64 { return s.Errors },
	}
	for op, read := range ops {
		read := read
		m.Registry.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "db_operations_total",
			Help:        "Badger operations by kind.",
			ConstLabels: prometheus.Labels{"op": op},
		}, func() float64 { return float64(read(db.Metrics())) }))
	}
}

// WatchBreaker exports the state of a circuit breaker: 0 closed, 1 half-open, 2 open
func (m *Metrics) WatchBreaker(name string, state func() string) {
	m.Registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "breaker_state",
		Help:        "Circuit breaker state: 0 closed, 1 half-open, 2 open.",
		ConstLabels: prometheus.Labels{"breaker": name},
	}, func() float64 {
		if v, ok := breakerStates[state()]; ok {
			return v
		}
		return -1
	}))
}
