package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/qirtas-app/qirtas/internal/observability"
	"github.com/qirtas-app/qirtas/internal/tooltip"
	"github.com/qirtas-app/qirtas/internal/translate"
)

// TooltipHandler resolves hovered words to tooltip text
type TooltipHandler struct {
	resolver   *tooltip.Resolver
	translator translate.Client
	sourceLang string
	targetLang string
	metrics    *observability.Metrics
}

// NewTooltipHandler creates a new tooltip handler
func NewTooltipHandler(resolver *tooltip.Resolver, translator translate.Client, sourceLang, targetLang string, metrics *observability.Metrics) *TooltipHandler {
	return &TooltipHandler{
		resolver:   resolver,
		translator: translator,
		sourceLang: sourceLang,
		targetLang: targetLang,
		metrics:    metrics,
	}
}

// tooltipResponse is the tooltip resolution response body.
type tooltipResponse struct {
	Word   string `json:"word"`
	Text   string `json:"text"`
	Source string `json:"source"`
}

// Get handles GET /api/v1/tooltip?word=... and always returns a tooltip,
// falling back to echoing the word itself.
func (h *TooltipHandler) Get(c *fiber.Ctx) error {
	word := c.Query("word")
	if word == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query parameter 'word' is required",
		})
	}

	text, source := h.resolver.ResolveWithSource(c.Context(), word)
	if h.metrics != nil {
		h.metrics.RecordTooltipResolution(string(source))
	}

	return c.JSON(tooltipResponse{
		Word:   word,
		Text:   text,
		Source: string(source),
	})
}

// translateRequest is the ad-hoc translation request body.
type translateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
}

// Translate handles POST /api/v1/translate for ad-hoc phrase translation,
// bypassing the lexicon and tooltip cache.
func (h *TooltipHandler) Translate(c *fiber.Ctx) error {
	if h.translator == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Translation service not configured",
		})
	}

	var req translateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Field 'text' is required",
		})
	}

	source := req.Source
	if source == "" {
		source = h.sourceLang
	}
	target := req.Target
	if target == "" {
		target = h.targetLang
	}

	start := time.Now()
	translated, err := h.translator.Translate(c.Context(), req.Text, source, target)
	if h.metrics != nil {
		h.metrics.RecordTranslation(h.translator.Name(), time.Since(start), err)
	}
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Translation failed",
		})
	}

	return c.JSON(fiber.Map{
		"text":       req.Text,
		"translated": translated,
		"source":     source,
		"target":     target,
	})
}
