// Package metrics exposes Prometheus instruments for report generation and
// the HTTP surface. All methods are safe to call on a nil *Metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the service's collectors.
type Metrics struct {
	registry *prometheus.Registry

	reportsStarted  prometheus.Counter
	reportsRejected prometheus.Counter
	reportDuration  prometheus.Histogram
	siteFailures    prometheus.Counter
	skipped         *prometheus.CounterVec

	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reportsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "uptime_reports_started_total",
			Help: "Report generation runs started.",
		}),
		reportsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "uptime_reports_rejected_total",
			Help: "Trigger requests rejected because a run was in flight.",
		}),
		reportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "uptime_report_duration_seconds",
			Help:    "Wall time of a report generation run.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		siteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "uptime_site_failures_total",
			Help: "Sites whose row was omitted because the pipeline failed.",
		}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uptime_observations_skipped_total",
			Help: "Observations left out of a report, by reason.",
		}, []string{"reason"}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		m.reportsStarted,
		m.reportsRejected,
		m.reportDuration,
		m.siteFailures,
		m.skipped,
		m.httpRequestsTotal,
		m.httpDuration,
	)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ReportStarted() {
	if m != nil {
		m.reportsStarted.Inc()
	}
}

func (m *Metrics) ReportRejected() {
	if m != nil {
		m.reportsRejected.Inc()
	}
}

func (m *Metrics) ObserveReport(d time.Duration) {
	if m != nil {
		m.reportDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) SiteFailed() {
	if m != nil {
		m.siteFailures.Inc()
	}
}

// Skipped records n observations dropped for reason ("future", "malformed").
func (m *Metrics) Skipped(reason string, n int) {
	if m != nil && n > 0 {
		m.skipped.WithLabelValues(reason).Add(float64(n))
	}
}

// Middleware records request counts and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
