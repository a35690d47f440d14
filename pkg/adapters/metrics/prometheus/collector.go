package prometheus

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector records service metrics on a Prometheus registry
type Collector struct {
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	rateLimited   *prometheus.CounterVec
	dbConnections *prometheus.GaugeVec
	dbWaitCount   prometheus.Gauge
	dbUp          prometheus.Gauge
	buildInfo     *prometheus.GaugeVec
}

// NewCollector creates a collector whose metrics are registered on reg
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "basecamp_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "basecamp_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		rateLimited: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "basecamp_rate_limited_total",
				Help: "Total number of requests rejected by the rate limiter",
			},
			[]string{"route"},
		),
		dbConnections: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "basecamp_db_connections",
				Help: "Database pool connections by state",
			},
			[]string{"state"},
		),
		dbWaitCount: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "basecamp_db_wait_count",
				Help: "Total number of connections waited for",
			},
		),
		dbUp: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "basecamp_db_up",
				Help: "Whether the last database health check succeeded",
			},
		),
		buildInfo: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "basecamp_build_info",
				Help: "Build and runtime information",
			},
			[]string{"version", "env"},
		),
	}
}

// ObserveRequest records a completed HTTP request
func (c *Collector) ObserveRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// IncRateLimited increments the count of rejected requests
func (c *Collector) IncRateLimited(route string) {
	c.rateLimited.WithLabelValues(route).Inc()
}

// RecordDBPool records database pool statistics
func (c *Collector) RecordDBPool(stats sql.DBStats) {
	c.dbConnections.WithLabelValues("open").Set(float64(stats.OpenConnections))
	c.dbConnections.WithLabelValues("in_use").Set(float64(stats.InUse))
	c.dbConnections.WithLabelValues("idle").Set(float64(stats.Idle))
	c.dbConnections.WithLabelValues("max_open").Set(float64(stats.MaxOpenConnections))
	c.dbWaitCount.Set(float64(stats.WaitCount))
}

// SetDBUp records the result of the last database health check
func (c *Collector) SetDBUp(up bool) {
	if up {
		c.dbUp.Set(1)
		return
	}
	c.dbUp.Set(0)
}

// SetBuildInfo publishes the running version and environment
func (c *Collector) SetBuildInfo(version, env string) {
	c.buildInfo.WithLabelValues(version, env).Set(1)
}
