package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	adminRequestsTotal    *prometheus.CounterVec
	adminLatencySeconds   *prometheus.HistogramVec
	adminErrorsTotal      *prometheus.CounterVec
	catalogRequestsTotal  *prometheus.CounterVec
	catalogLatencySeconds prometheus.Histogram
	submissionsTotal      *prometheus.CounterVec
	approvalsTotal        prometheus.Counter
	uploadLatencySeconds  prometheus.Histogram
	realtimeConnections   prometheus.Gauge
	realtimeBroadcasts    *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		adminRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_requests_total",
			Help: "Total number of admin API requests served.",
		}, []string{"method", "route", "status"})

		adminLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "admin_latency_seconds",
			Help:    "Latency distribution for admin API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		adminErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_errors_total",
			Help: "Total number of error responses returned by admin endpoints.",
		}, []string{"method", "route", "status"})

		catalogRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_requests_total",
			Help: "Total number of activity catalog reads by cache outcome.",
		}, []string{"outcome"})

		catalogLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "catalog_latency_seconds",
			Help:    "Latency distribution for activity catalog reads.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submissions_total",
			Help: "Total number of student activity submissions by result.",
		}, []string{"result"})

		approvalsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "submission_approvals_total",
			Help: "Total number of pending activities approved.",
		})

		uploadLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "upload_latency_seconds",
			Help:    "Latency distribution for blob storage uploads.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		})

		realtimeConnections = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "realtime_connections",
			Help: "Number of websocket subscribers currently connected.",
		})

		realtimeBroadcasts = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "realtime_broadcasts_total",
			Help: "Total number of snapshot broadcasts by collection.",
		}, []string{"collection"})

		prometheus.MustRegister(
			adminRequestsTotal, adminLatencySeconds, adminErrorsTotal,
			catalogRequestsTotal, catalogLatencySeconds,
			submissionsTotal, approvalsTotal, uploadLatencySeconds,
			realtimeConnections, realtimeBroadcasts,
		)
	})
}

// AdminRequests exposes the counter for admin requests.
func AdminRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return adminRequestsTotal
}

// AdminLatency exposes the latency histogram for admin requests.
func AdminLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return adminLatencySeconds
}

// AdminErrors exposes the counter for admin error responses.
func AdminErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return adminErrorsTotal
}

// CatalogRequests exposes the counter for catalog reads.
func CatalogRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return catalogRequestsTotal
}

// CatalogLatency exposes the latency histogram for catalog reads.
func CatalogLatency() prometheus.Histogram {
	RegisterMetrics()
	return catalogLatencySeconds
}

// Submissions exposes the counter for student submissions.
func Submissions() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// Approvals exposes the counter for approvals.
func Approvals() prometheus.Counter {
	RegisterMetrics()
	return approvalsTotal
}

// UploadLatency exposes the latency histogram for uploads.
func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatencySeconds
}

// RealtimeConnections exposes the gauge of connected subscribers.
func RealtimeConnections() prometheus.Gauge {
	RegisterMetrics()
	return realtimeConnections
}

// RealtimeBroadcasts exposes the counter of snapshot broadcasts.
func RealtimeBroadcasts() *prometheus.CounterVec {
	RegisterMetrics()
	return realtimeBroadcasts
}
