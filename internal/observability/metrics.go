package observability

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for Qirtas
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Pipeline metrics
	pagesProcessedTotal  *prometheus.CounterVec
	pageProcessDuration  *prometheus.HistogramVec
	documentsTotal       *prometheus.CounterVec

	// OCR metrics
	ocrFallbackOutcome *prometheus.CounterVec

	// Tooltip metrics
	tooltipResolutionsTotal *prometheus.CounterVec
	translationDuration     *prometheus.HistogramVec

	// System metrics
	systemUptime prometheus.Gauge
}

var (
	metricsOnce     sync.Once
	metricsInstance *Metrics
)

// NewMetrics creates and registers all Prometheus metrics. Registration on
// the default registry must happen once per process, so the same instance
// is returned on every call.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = newMetrics()
	})
	return metricsInstance
}

func newMetrics() *Metrics {
	m := &Metrics{
		// HTTP metrics
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qirtas_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "qirtas_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path", "status"},
		),
		httpRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "qirtas_http_requests_in_flight",
				Help: "Current number of HTTP requests being processed",
			},
		),

		// Pipeline metrics
		pagesProcessedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qirtas_pages_processed_total",
				Help: "Total number of pages processed, by word source mode",
			},
			[]string{"mode"},
		),
		pageProcessDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "qirtas_page_process_duration_seconds",
				Help:    "Per-page processing latency in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"mode"},
		),
		documentsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qirtas_documents_total",
				Help: "Total number of documents processed, by kind",
			},
			[]string{"kind", "status"},
		),

		// OCR metrics
		ocrFallbackOutcome: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qirtas_ocr_fallback_outcome_total",
				Help: "OCR cascade outcomes, by winning engine",
			},
			[]string{"engine"},
		),

		// Tooltip metrics
		tooltipResolutionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qirtas_tooltip_resolutions_total",
				Help: "Total number of tooltip resolutions, by source",
			},
			[]string{"source"},
		),
		translationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "qirtas_translation_call_duration_seconds",
				Help:    "External translation call latency in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"provider", "status"},
		),

		// System metrics
		systemUptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "qirtas_system_uptime_seconds",
				Help: "System uptime in seconds",
			},
		),
	}

	return m
}

// MetricsMiddleware returns a Fiber middleware that collects HTTP metrics
func (m *Metrics) MetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		m.httpRequestsInFlight.Inc()
		defer m.httpRequestsInFlight.Dec()

		path := normalizePath(c.Path())
		method := c.Method()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := statusClass(c.Response().StatusCode())

		m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		m.httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)

		return err
	}
}

// RecordPage records a processed page and its latency, labeled by the mode
// that produced the word boxes (text, ocr, none)
func (m *Metrics) RecordPage(mode string, duration time.Duration) {
	m.pagesProcessedTotal.WithLabelValues(mode).Inc()
	m.pageProcessDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordDocument records a processed document upload
func (m *Metrics) RecordDocument(kind string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.documentsTotal.WithLabelValues(kind, status).Inc()
}

// RecordOCROutcome records the winning engine of an OCR cascade.
// An empty engine means no engine produced words.
func (m *Metrics) RecordOCROutcome(engine string) {
	if engine == "" {
		engine = "none"
	}
	m.ocrFallbackOutcome.WithLabelValues(engine).Inc()
}

// RecordTooltipResolution records a tooltip resolution by source
// (lexicon, cache, translation, fallback)
func (m *Metrics) RecordTooltipResolution(source string) {
	m.tooltipResolutionsTotal.WithLabelValues(source).Inc()
}

// RecordTranslation records an external translation call
func (m *Metrics) RecordTranslation(provider string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.translationDuration.WithLabelValues(provider, status).Observe(duration.Seconds())
}

// UpdateUptime updates the system uptime metric
func (m *Metrics) UpdateUptime(startTime time.Time) {
	m.systemUptime.Set(time.Since(startTime).Seconds())
}

// Handler returns a Fiber handler that exposes Prometheus metrics
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

// normalizePath normalizes API paths for metrics (replaces IDs with placeholders)
func normalizePath(path string) string {
	if len(path) > 50 {
		return "long_path" // Prevent cardinality explosion
	}
	return path
}

// statusClass returns the HTTP status class (2xx, 3xx, 4xx, 5xx)
func statusClass(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
