package observability

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusClass(t *testing.T) {
	testCases := []struct {
		status   int
		expected string
	}{
		{200, "2xx"},
		{201, "2xx"},
		{204, "2xx"},
		{299, "2xx"},
		{300, "3xx"},
		{304, "3xx"},
		{400, "4xx"},
		{404, "4xx"},
		{429, "4xx"},
		{499, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
		{100, "unknown"},
		{0, "unknown"},
		{600, "5xx"}, // >= 500 returns 5xx
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("status_%d", tc.status), func(t *testing.T) {
			result := statusClass(tc.status)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestNormalizePath(t *testing.T) {
	t.Run("returns path unchanged for short paths", func(t *testing.T) {
		result := normalizePath("/v1/tooltip")
		assert.Equal(t, "/v1/tooltip", result)
	})

	t.Run("returns long_path for paths over 50 chars", func(t *testing.T) {
		longPath := "/v1/documents/very/long/path/that/exceeds/fifty/characters/limit"
		result := normalizePath(longPath)
		assert.Equal(t, "long_path", result)
	})

	t.Run("handles empty path", func(t *testing.T) {
		result := normalizePath("")
		assert.Equal(t, "", result)
	})

	t.Run("handles root path", func(t *testing.T) {
		result := normalizePath("/")
		assert.Equal(t, "/", result)
	})
}

// TestMetrics_AllMethods exercises all metrics methods against one instance.
// A single test avoids duplicate metric registration issues.
func TestMetrics_AllMethods(t *testing.T) {
	m := NewMetrics()
	require.NotNil(t, m)

	t.Run("RecordPage", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.RecordPage("text", 100*time.Millisecond)
			m.RecordPage("ocr", 3*time.Second)
			m.RecordPage("none", 50*time.Millisecond)
		})
	})

	t.Run("RecordDocument_success", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.RecordDocument("pdf", nil)
		})
	})

	t.Run("RecordDocument_error", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.RecordDocument("docx", assert.AnError)
		})
	})

	t.Run("RecordOCROutcome", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.RecordOCROutcome("ocrspace-2")
			m.RecordOCROutcome("") // no winner becomes "none"
		})
	})

	t.Run("RecordTooltipResolution", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.RecordTooltipResolution("lexicon")
			m.RecordTooltipResolution("cache")
			m.RecordTooltipResolution("translation")
			m.RecordTooltipResolution("fallback")
		})
	})

	t.Run("RecordTranslation_success", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.RecordTranslation("mymemory", 500*time.Millisecond, nil)
		})
	})

	t.Run("RecordTranslation_error", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.RecordTranslation("libretranslate", time.Second, assert.AnError)
		})
	})

	t.Run("UpdateUptime", func(t *testing.T) {
		startTime := time.Now().Add(-time.Hour)
		assert.NotPanics(t, func() {
			m.UpdateUptime(startTime)
		})
	})

	t.Run("Handler", func(t *testing.T) {
		handler := m.Handler()
		assert.NotNil(t, handler)
	})

	t.Run("MetricsMiddleware", func(t *testing.T) {
		middleware := m.MetricsMiddleware()
		assert.NotNil(t, middleware)
	})
}
