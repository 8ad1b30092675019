// Package metrics exposes Prometheus counters for moderation, ingestion and HTTP traffic
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "event_gallery"

// Metrics holds every collector on a private registry so tests can build
// as many instances as they like
type Metrics struct {
	registry *prometheus.Registry

	transitions     *prometheus.CounterVec
	mediaToggles    *prometheus.CounterVec
	blessings       prometheus.Counter
	ingestedFiles   *prometheus.CounterVec
	ingestJobs      *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moderation_transitions_total",
			Help:      "Status changes applied to events and blessings",
		}, []string{"entity", "status"}),
		mediaToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "media_visibility_toggles_total",
			Help:      "Media visibility toggles by resulting visibility",
		}, []string{"visible"}),
		blessings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blessings_submitted_total",
			Help:      "Guestbook submissions accepted for moderation",
		}),
		ingestedFiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_files_total",
			Help:      "Folder entries seen by ingestion, by outcome",
		}, []string{"outcome"}),
		ingestJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_jobs_total",
			Help:      "Finished ingest jobs by final status",
		}, []string{"status"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code",
		}, []string{"method", "route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.transitions,
		m.mediaToggles,
		m.blessings,
		m.ingestedFiles,
		m.ingestJobs,
		m.requests,
		m.requestDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) StatusChanged(entity, status string) {
	m.transitions.WithLabelValues(entity, status).Inc()
}

func (m *Metrics) MediaToggled(visible bool) {
	m.mediaToggles.WithLabelValues(strconv.FormatBool(visible)).Inc()
}

func (m *Metrics) BlessingSubmitted() {
	m.blessings.Inc()
}

// FilesIngested records the outcome of one folder import
func (m *Metrics) FilesIngested(imported, skipped int) {
	m.ingestedFiles.WithLabelValues("imported").Add(float64(imported))
	m.ingestedFiles.WithLabelValues("skipped").Add(float64(skipped))
}

func (m *Metrics) JobFinished(status string) {
	m.ingestJobs.WithLabelValues(status).Inc()
}

// ObserveRequest records one served HTTP request
func (m *Metrics) ObserveRequest(method, route string, code int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
