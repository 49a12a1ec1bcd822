package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the intake
// pipeline. All methods are nil-receiver safe so callers never have to
// guard against metrics being disabled.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	extractionsTotal      *prometheus.CounterVec
	leavesCreated         prometheus.Counter
	matchesTotal          *prometheus.CounterVec
	matchCandidates       prometheus.Histogram
	notificationsEnqueued prometheus.Counter
	cacheHits             prometheus.Counter
	cacheMisses           prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	extractionsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leave_extractions_total",
		Help: "Document extraction attempts by outcome",
	}, []string{"outcome"})

	leavesCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "leave_records_created_total",
		Help: "Total leave records persisted",
	})

	matchesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "substitute_matches_total",
		Help: "Substitute matching passes by outcome",
	}, []string{"outcome"})

	matchCandidates := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "substitute_match_candidates",
		Help:    "Eligible candidates found per matching pass",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
	})

	notificationsEnqueued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "substitute_notifications_enqueued_total",
		Help: "Substitute notifications queued for delivery",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, extractionsTotal, leavesCreated, matchesTotal, matchCandidates, notificationsEnqueued, cacheHits, cacheMisses, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:              registry,
		handler:               handler,
		requestDuration:       requestDuration,
		requestTotal:          requestTotal,
		extractionsTotal:      extractionsTotal,
		leavesCreated:         leavesCreated,
		matchesTotal:          matchesTotal,
		matchCandidates:       matchCandidates,
		notificationsEnqueued: notificationsEnqueued,
		cacheHits:             cacheHits,
		cacheMisses:           cacheMisses,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// CountExtraction records one extraction attempt.
func (m *MetricsService) CountExtraction(ok bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	m.extractionsTotal.WithLabelValues(outcome).Inc()
}

// CountLeaveCreated records one persisted leave record.
func (m *MetricsService) CountLeaveCreated() {
	if m == nil {
		return
	}
	m.leavesCreated.Inc()
}

// CountMatch records one matching pass and its candidate count.
func (m *MetricsService) CountMatch(ran bool, candidates int) {
	if m == nil {
		return
	}
	outcome := "ran"
	if !ran {
		outcome = "skipped"
	}
	m.matchesTotal.WithLabelValues(outcome).Inc()
	if ran {
		m.matchCandidates.Observe(float64(candidates))
	}
}

// CountNotificationEnqueued records one queued notification.
func (m *MetricsService) CountNotificationEnqueued() {
	if m == nil {
		return
	}
	m.notificationsEnqueued.Inc()
}

// RecordCacheOperation records a cache hit or miss.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}
