package obs

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	commands  *prometheus.CounterVec
	published *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dwelling",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dwelling",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"method", "route"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dwelling",
			Subsystem: "commands",
			Name:      "total",
			Help:      "Dispatched commands by outcome.",
		}, []string{"command", "outcome"}),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dwelling",
			Subsystem: "outbox",
			Name:      "published_total",
			Help:      "Outbox events handed to the broker.",
		}, []string{"topic", "result"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.duration, m.commands, m.published,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// CommandObserver counts commands by outcome. classify turns an error into
// a short label; a nil error is always "ok".
func (m *Metrics) CommandObserver(classify func(error) string) func(ctx context.Context, key string, elapsed time.Duration, err error) {
	return func(_ context.Context, key string, _ time.Duration, err error) {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			if classify != nil {
				outcome = classify(err)
			}
		}
		m.commands.WithLabelValues(key, outcome).Inc()
	}
}

// ObservePublish is the outbox worker's publish hook.
func (m *Metrics) ObservePublish(topic string, err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	m.published.WithLabelValues(topic, result).Inc()
}
