package api

import (
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/qirtas-app/qirtas/internal/cache"
	"github.com/qirtas-app/qirtas/internal/document"
	"github.com/qirtas-app/qirtas/internal/lexicon"
	"github.com/qirtas-app/qirtas/internal/observability"
)

// MonitoringHandler handles system monitoring and health check endpoints
type MonitoringHandler struct {
	store      *DocumentStore
	lexicon    *lexicon.Lexicon
	cache      *cache.LRU
	rasterizer *document.PdftoppmRasterizer
	metrics    *observability.Metrics
}

// NewMonitoringHandler creates a new monitoring handler
func NewMonitoringHandler(store *DocumentStore, lex *lexicon.Lexicon, c *cache.LRU, rasterizer *document.PdftoppmRasterizer, metrics *observability.Metrics) *MonitoringHandler {
	return &MonitoringHandler{
		store:      store,
		lexicon:    lex,
		cache:      c,
		rasterizer: rasterizer,
		metrics:    metrics,
	}
}

// RegisterRoutes registers monitoring routes
func (h *MonitoringHandler) RegisterRoutes(app *fiber.App) {
	monitoring := app.Group("/api/v1/monitoring")
	monitoring.Get("/metrics", h.GetMetrics)
	monitoring.Get("/health", h.GetHealth)
}

// SystemMetrics represents system-wide metrics
type SystemMetrics struct {
	// System info
	Uptime       int64  `json:"uptime_seconds"`
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`

	// Process memory stats
	MemoryAllocMB      uint64  `json:"memory_alloc_mb"`
	MemoryTotalAllocMB uint64  `json:"memory_total_alloc_mb"`
	MemorySysMB        uint64  `json:"memory_sys_mb"`
	NumGC              uint32  `json:"num_gc"`
	GCPauseMS          float64 `json:"gc_pause_ms"`

	// Host memory stats
	HostMemoryUsedPercent float64 `json:"host_memory_used_percent,omitempty"`
	HostMemoryTotalMB     uint64  `json:"host_memory_total_mb,omitempty"`

	// Application stats
	StoredDocuments int `json:"stored_documents"`
	LexiconEntries  int `json:"lexicon_entries"`
	TooltipCacheLen int `json:"tooltip_cache_len"`
	TooltipCacheCap int `json:"tooltip_cache_cap"`
}

// HealthStatus represents the health status of a component
type HealthStatus struct {
	Status  string `json:"status"` // "healthy", "degraded", "unhealthy"
	Message string `json:"message,omitempty"`
}

// SystemHealth represents the health of all system components
type SystemHealth struct {
	Status   string                  `json:"status"`
	Services map[string]HealthStatus `json:"services"`
}

var startTime = time.Now()

// GetMetrics returns system metrics
func (h *MonitoringHandler) GetMetrics(c *fiber.Ctx) error {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	if h.metrics != nil {
		h.metrics.UpdateUptime(startTime)
	}

	metrics := SystemMetrics{
		Uptime:       int64(time.Since(startTime).Seconds()),
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),

		MemoryAllocMB:      m.Alloc / 1024 / 1024,
		MemoryTotalAllocMB: m.TotalAlloc / 1024 / 1024,
		MemorySysMB:        m.Sys / 1024 / 1024,
		NumGC:              m.NumGC,
		GCPauseMS:          float64(m.PauseNs[(m.NumGC+255)%256]) / 1000000,

		StoredDocuments: h.store.Len(),
		LexiconEntries:  h.lexicon.Len(),
		TooltipCacheLen: h.cache.Len(),
		TooltipCacheCap: h.cache.Cap(),
	}

	if vmStat, err := mem.VirtualMemory(); err == nil {
		metrics.HostMemoryUsedPercent = vmStat.UsedPercent
		metrics.HostMemoryTotalMB = vmStat.Total / 1024 / 1024
	}

	return c.JSON(metrics)
}

// GetHealth returns the health status of all system components
func (h *MonitoringHandler) GetHealth(c *fiber.Ctx) error {
	health := SystemHealth{
		Status:   "healthy",
		Services: make(map[string]HealthStatus),
	}

	// Rasterizer availability drives OCR fallback for image-only PDFs;
	// without it text-layer pages still work, so this only degrades.
	if h.rasterizer != nil && h.rasterizer.Available() {
		health.Services["rasterizer"] = HealthStatus{Status: "healthy"}
	} else {
		health.Services["rasterizer"] = HealthStatus{
			Status:  "degraded",
			Message: "pdftoppm not found, OCR fallback disabled for scanned PDFs",
		}
		health.Status = "degraded"
	}

	if h.lexicon.Len() > 0 {
		health.Services["lexicon"] = HealthStatus{Status: "healthy"}
	} else {
		health.Services["lexicon"] = HealthStatus{
			Status:  "degraded",
			Message: "lexicon is empty, tooltips rely on translation only",
		}
		if health.Status == "healthy" {
			health.Status = "degraded"
		}
	}

	return c.JSON(health)
}
