// Package metrics exposes Prometheus collectors for audits, upstream calls and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trade_integrity/internal/feature/integrity/domain/entity"
)

var (
	auditsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integrity_audits_total",
			Help: "Total number of integrity audits by outcome",
		},
		[]string{"instrument", "interval", "status"},
	)
	violationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integrity_violations_total",
			Help: "Total number of rule violations found",
		},
		[]string{"rule"},
	)
	analyzedIntervals = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "integrity_analyzed_intervals",
			Help: "Intervals analyzed by the most recent audit",
		},
		[]string{"instrument", "interval"},
	)
	upstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "integrity_upstream_request_duration_seconds",
			Help:    "Market-data API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint", "result"},
	)
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integrity_http_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"path", "method", "code"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "integrity_http_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5},
		},
		[]string{"path"},
	)
)

// AuditRecorder records audit outcomes. It satisfies the integrity usecase's AuditObserver.
type AuditRecorder struct{}

// NewAuditRecorder returns a recorder backed by the package collectors.
func NewAuditRecorder() *AuditRecorder {
	return &AuditRecorder{}
}

// ObserveAudit counts the audit by status and its violations by rule.
func (AuditRecorder) ObserveAudit(r *entity.AuditResult) {
	if r == nil {
		return
	}
	auditsTotal.WithLabelValues(r.Instrument, r.Interval.String(), string(r.Status)).Inc()
	analyzedIntervals.WithLabelValues(r.Instrument, r.Interval.String()).Set(float64(r.Report.AnalyzedIntervalCount))
	for rule, n := range r.Report.CountByRule() {
		violationsTotal.WithLabelValues(rule.String()).Add(float64(n))
	}
}

// ObserveUpstream records the latency of one market-data API call.
func ObserveUpstream(endpoint string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	upstreamDuration.WithLabelValues(endpoint, result).Observe(d.Seconds())
}

// GinMiddleware counts requests by route template, method and status code.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
