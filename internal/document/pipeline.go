package document

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/qirtas-app/qirtas/internal/layout"
	"github.com/qirtas-app/qirtas/internal/ocr"
)

// Options tune one pipeline run.
type Options struct {
	// ForceOCR skips the text-layer attempt entirely; pages go straight to
	// the OCR cascade with the forced-ocr diagnostic.
	ForceOCR bool
	// OnPage, when set, receives each completed page record before the next
	// page starts, so partial progress is observable.
	OnPage func(PageRecord)
}

// Pipeline assembles page records for an upload. Pages are processed
// strictly sequentially to bound memory and respect third-party rate
// limits.
type Pipeline struct {
	layout       *layout.Engine
	orchestrator *ocr.Orchestrator
	rasterizer   Rasterizer
	ocrLanguage  string
	rasterDPI    int
}

// NewPipeline wires a pipeline. orchestrator and rasterizer may be nil;
// affected pages then surface diagnostics instead of OCR results.
func NewPipeline(engine *layout.Engine, orchestrator *ocr.Orchestrator, rasterizer Rasterizer, ocrLanguage string, rasterDPI int) *Pipeline {
	if engine == nil {
		engine = layout.NewEngine()
	}
	if rasterDPI <= 0 {
		rasterDPI = 150
	}
	return &Pipeline{
		layout:       engine,
		orchestrator: orchestrator,
		rasterizer:   rasterizer,
		ocrLanguage:  ocrLanguage,
		rasterDPI:    rasterDPI,
	}
}

// Process runs the whole pipeline for one upload. Input validation failures
// (unsupported type, unreadable file) return an error with no partial
// result; per-page failures are contained in their page records.
func (p *Pipeline) Process(ctx context.Context, filename string, data []byte, opts Options) (*Result, error) {
	kind, err := DetectKind(filename, data)
	if err != nil {
		return nil, err
	}

	result := &Result{
		ID:       uuid.New(),
		Filename: filename,
		Kind:     kind,
	}

	switch kind {
	case KindPDF:
		err = p.processPDF(ctx, data, opts, result)
	case KindDOCX:
		err = p.processDOCXUpload(data, opts, result)
	}
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("document", result.ID.String()).
		Str("kind", string(kind)).
		Int("pages", len(result.Pages)).
		Int("words", result.WordCount()).
		Msg("Document processed")

	return result, nil
}

func (p *Pipeline) processPDF(ctx context.Context, data []byte, opts Options, result *Result) error {
	source, err := openPDF(data, p.rasterizer, p.rasterDPI)
	if err != nil {
		return err
	}

	total := source.pageCount()
	for n := 1; n <= total; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec := p.processPage(ctx, source, n, opts)
		result.Pages = append(result.Pages, rec)
		if opts.OnPage != nil {
			opts.OnPage(rec)
		}
	}
	return nil
}

// processPage runs one page through render, text-layer attempt, and OCR
// fallback. Failures never escape the page record.
func (p *Pipeline) processPage(ctx context.Context, source *pdfSource, n int, opts Options) PageRecord {
	rp, err := source.page(ctx, n)
	if err != nil {
		log.Warn().Err(err).Int("page", n).Msg("Page rendering failed, continuing with remaining pages")
		return PageRecord{Number: n, Mode: ModeNone, Err: err.Error()}
	}

	rec := PageRecord{Number: n, Image: rp.image}

	var trigger string
	if opts.ForceOCR {
		trigger = ocr.ReasonForced
	} else {
		res := p.layout.LayoutPage(rp.runs, rp.viewport)
		if res.Usable {
			rec.Words = res.Words
			rec.Mode = ModeText
			return rec
		}
		trigger = res.Reason
	}

	return p.runOCR(ctx, rec, rp, trigger)
}

func (p *Pipeline) runOCR(ctx context.Context, rec PageRecord, rp *renderedPage, trigger string) PageRecord {
	if p.orchestrator == nil || len(rp.image.Data) == 0 {
		rec.Mode = ModeNone
		rec.Reason = joinReasons(trigger, "ocr unavailable")
		return rec
	}

	fb := p.orchestrator.Run(ctx, rp.image.Data, p.ocrLanguage)
	if len(fb.Words) > 0 {
		rec.Words = fb.Words
		rec.Mode = ModeOCR
		rec.Engine = fb.Engine
		rec.Reason = joinReasons(trigger, fb.Reason)
		return rec
	}

	rec.Mode = ModeNone
	rec.Reason = joinReasons(trigger, fb.Reason)
	return rec
}

func (p *Pipeline) processDOCXUpload(data []byte, opts Options, result *Result) error {
	rec, err := processDOCX(data)
	if err != nil {
		return fmt.Errorf("unreadable DOCX: %w", err)
	}

	// DOCX has no page raster, so a forced OCR run has nothing to feed the
	// cascade; the page carries the diagnostic instead of text-layer boxes.
	if opts.ForceOCR {
		rec = PageRecord{
			Number: rec.Number,
			Mode:   ModeNone,
			Reason: joinReasons(ocr.ReasonForced, "ocr unavailable"),
		}
	}
	result.Pages = append(result.Pages, rec)
	if opts.OnPage != nil {
		opts.OnPage(rec)
	}
	return nil
}

func joinReasons(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "; " + b
	}
}
