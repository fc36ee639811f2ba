// Package metrics provides Prometheus metrics for the import backend.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds Prometheus metrics for the backend API.
type Collector struct {
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	repositoriesSaved *prometheus.CounterVec
	issuesSaved       prometheus.Counter
	rejections        *prometheus.CounterVec
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "importer_http_requests_total",
				Help: "Total HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "importer_http_request_duration_seconds",
				Help:    "HTTP request processing duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		repositoriesSaved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "importer_repositories_saved_total",
				Help: "Repositories written to storage",
			},
			[]string{"visibility"},
		),
		issuesSaved: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "importer_issues_saved_total",
				Help: "Issues written to storage",
			},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "importer_rejections_total",
				Help: "Import requests rejected by error code",
			},
			[]string{"code"},
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.requestsTotal.Describe(ch)
	c.requestDuration.Describe(ch)
	c.repositoriesSaved.Describe(ch)
	c.issuesSaved.Describe(ch)
	c.rejections.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.requestsTotal.Collect(ch)
	c.requestDuration.Collect(ch)
	c.repositoriesSaved.Collect(ch)
	c.issuesSaved.Collect(ch)
	c.rejections.Collect(ch)
}

// RecordRequest records one handled HTTP request.
func (c *Collector) RecordRequest(method, route string, status int, durationSeconds float64) {
	c.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(durationSeconds)
}

// RecordRepositorySaved records a repository upsert.
func (c *Collector) RecordRepositorySaved(private bool) {
	visibility := "public"
	if private {
		visibility = "private"
	}
	c.repositoriesSaved.WithLabelValues(visibility).Inc()
}

// RecordIssueSaved records an issue upsert.
func (c *Collector) RecordIssueSaved() {
	c.issuesSaved.Inc()
}

// RecordRejection records a request refused with an application error code.
func (c *Collector) RecordRejection(code string) {
	c.rejections.WithLabelValues(code).Inc()
}
