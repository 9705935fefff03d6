// Package metrics holds the Prometheus collectors for projectgrid.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for the projects API client and the UI actions.
//
// Metrics:
//   - projectgrid_api_requests_total{op,outcome} - calls made to the projects API
//   - projectgrid_api_request_duration_seconds{op} - latency of those calls
//   - projectgrid_uploads_total{outcome} - upload form submissions
//   - projectgrid_cached_projects - size of the cached project list
type Metrics struct {
	APIRequestsTotal *prometheus.CounterVec
	APIDuration      *prometheus.HistogramVec
	UploadsTotal     *prometheus.CounterVec
	CachedProjects   prometheus.Gauge
}

// New creates and registers the collectors once per process.
func New() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			APIRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "projectgrid_api_requests_total",
					Help: "Total number of requests made to the projects API",
				},
				[]string{"op", "outcome"}, // outcome: "ok", "status", "network"
			),
			APIDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "projectgrid_api_request_duration_seconds",
					Help:    "Duration of projects API requests in seconds",
					Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
				},
				[]string{"op"},
			),
			UploadsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "projectgrid_uploads_total",
					Help: "Total number of upload form submissions",
				},
				[]string{"outcome"}, // "ok", "invalid", "failed"
			),
			CachedProjects: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "projectgrid_cached_projects",
					Help: "Number of projects in the cached list",
				},
			),
		}
	})

	return globalMetrics
}

// ObserveAPI records one projects API call.
func (m *Metrics) ObserveAPI(op, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.APIRequestsTotal.WithLabelValues(op, outcome).Inc()
	m.APIDuration.WithLabelValues(op).Observe(d.Seconds())
}

// RecordUpload records an upload submission outcome.
func (m *Metrics) RecordUpload(outcome string) {
	if m == nil {
		return
	}
	m.UploadsTotal.WithLabelValues(outcome).Inc()
}

// SetCached records the size of the cached list.
func (m *Metrics) SetCached(n int) {
	if m == nil {
		return
	}
	m.CachedProjects.Set(float64(n))
}
