package api

import (
	"io"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/qirtas-app/qirtas/internal/document"
	"github.com/qirtas-app/qirtas/internal/observability"
)

// DocumentHandler handles document upload and retrieval endpoints
type DocumentHandler struct {
	pipeline *document.Pipeline
	store    *DocumentStore
	metrics  *observability.Metrics
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(pipeline *document.Pipeline, store *DocumentStore, metrics *observability.Metrics) *DocumentHandler {
	return &DocumentHandler{
		pipeline: pipeline,
		store:    store,
		metrics:  metrics,
	}
}

// pageSummary is a page record without its word boxes, used in the
// document-level response to keep it small.
type pageSummary struct {
	Number    int    `json:"number"`
	Mode      string `json:"mode"`
	WordCount int    `json:"word_count"`
	Engine    string `json:"engine,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Err       string `json:"error,omitempty"`
}

// documentResponse is the document-level response body.
type documentResponse struct {
	ID        uuid.UUID     `json:"id"`
	Filename  string        `json:"filename"`
	Kind      document.Kind `json:"kind"`
	PageCount int           `json:"page_count"`
	WordCount int           `json:"word_count"`
	Pages     []pageSummary `json:"pages"`
}

func summarize(result *document.Result) documentResponse {
	resp := documentResponse{
		ID:        result.ID,
		Filename:  result.Filename,
		Kind:      result.Kind,
		PageCount: len(result.Pages),
		WordCount: result.WordCount(),
		Pages:     make([]pageSummary, 0, len(result.Pages)),
	}
	for _, p := range result.Pages {
		resp.Pages = append(resp.Pages, pageSummary{
			Number:    p.Number,
			Mode:      string(p.Mode),
			WordCount: len(p.Words),
			Engine:    p.Engine,
			Reason:    p.Reason,
			Err:       p.Err,
		})
	}
	return resp
}

// Upload handles POST /api/v1/documents. It accepts a multipart "file"
// field (PDF or DOCX) and processes every page before responding.
// ?force_ocr=true skips the text-layer attempt.
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing file upload (multipart field 'file')",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to open uploaded file",
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}

	forceOCR := c.Query("force_ocr") == "true"

	start := time.Now()
	pageStart := start
	opts := document.Options{
		ForceOCR: forceOCR,
		OnPage: func(rec document.PageRecord) {
			if h.metrics != nil {
				h.metrics.RecordPage(string(rec.Mode), time.Since(pageStart))
				if rec.Mode == document.ModeOCR {
					h.metrics.RecordOCROutcome(rec.Engine)
				}
			}
			pageStart = time.Now()
		},
	}

	result, err := h.pipeline.Process(c.Context(), fileHeader.Filename, data, opts)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordDocument("unknown", err)
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	h.store.Put(result)
	if h.metrics != nil {
		h.metrics.RecordDocument(string(result.Kind), nil)
	}

	log.Info().
		Str("document_id", result.ID.String()).
		Str("filename", result.Filename).
		Str("kind", string(result.Kind)).
		Int("pages", len(result.Pages)).
		Int("words", result.WordCount()).
		Bool("force_ocr", forceOCR).
		Dur("duration", time.Since(start)).
		Msg("Document processed")

	return c.Status(fiber.StatusCreated).JSON(summarize(result))
}

// Get handles GET /api/v1/documents/:id.
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	result, ok := h.lookup(c)
	if !ok {
		return nil
	}
	return c.JSON(summarize(result))
}

// GetPage handles GET /api/v1/documents/:id/pages/:number. The full page
// record including word boxes is returned.
func (h *DocumentHandler) GetPage(c *fiber.Ctx) error {
	result, ok := h.lookup(c)
	if !ok {
		return nil
	}

	page, ok := h.page(c, result)
	if !ok {
		return nil
	}
	return c.JSON(page)
}

// GetPageImage handles GET /api/v1/documents/:id/pages/:number/image and
// serves the rendered page raster as PNG.
func (h *DocumentHandler) GetPageImage(c *fiber.Ctx) error {
	result, ok := h.lookup(c)
	if !ok {
		return nil
	}

	page, ok := h.page(c, result)
	if !ok {
		return nil
	}

	if len(page.Image.Data) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No rendered image for this page",
		})
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(page.Image.Data)
}

// Delete handles DELETE /api/v1/documents/:id.
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid document ID",
		})
	}
	h.store.Delete(id)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *DocumentHandler) lookup(c *fiber.Ctx) (*document.Result, bool) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid document ID",
		})
		return nil, false
	}

	result, ok := h.store.Get(id)
	if !ok {
		_ = c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Document not found",
		})
		return nil, false
	}
	return result, true
}

func (h *DocumentHandler) page(c *fiber.Ctx, result *document.Result) (document.PageRecord, bool) {
	number, err := strconv.Atoi(c.Params("number"))
	if err != nil || number < 1 || number > len(result.Pages) {
		_ = c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Page not found",
		})
		return document.PageRecord{}, false
	}
	return result.Pages[number-1], true
}
