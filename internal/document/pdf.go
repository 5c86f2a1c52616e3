package document

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/qirtas-app/qirtas/internal/layout"
)

// pdfSource exposes a PDF's pages to the pipeline: page count, per-page
// positioned text runs, and per-page rasters.
type pdfSource struct {
	data       []byte
	reader     *pdf.Reader
	rasterizer Rasterizer
	dpi        int
}

func openPDF(data []byte, rasterizer Rasterizer, dpi int) (*pdfSource, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	return &pdfSource{data: data, reader: reader, rasterizer: rasterizer, dpi: dpi}, nil
}

func (s *pdfSource) pageCount() int {
	return s.reader.NumPage()
}

// renderedPage is one page's raster plus its text layer, with the viewport
// transform mapping PDF point space onto the raster's pixel space.
type renderedPage struct {
	image    PageImage
	runs     []layout.TextRun
	viewport layout.Matrix
}

// page renders page n (1-based). The text layer is recovered defensively:
// the underlying parser panics on some malformed content streams, and a
// broken page must not take the rest of the document down.
func (s *pdfSource) page(ctx context.Context, n int) (rp *renderedPage, err error) {
	defer func() {
		if r := recover(); r != nil {
			rp = nil
			err = fmt.Errorf("page %d: malformed content: %v", n, r)
		}
	}()

	p := s.reader.Page(n)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d: missing page object", n)
	}

	widthPts, heightPts := pageSize(p)

	var img PageImage
	if s.rasterizer != nil {
		rastered, rErr := s.rasterizer.Rasterize(ctx, s.data, n, s.dpi)
		if rErr == nil {
			img = rastered
		} else {
			// Raster failure alone is not fatal: the text layer can still
			// produce boxes at the nominal scale.
			img = PageImage{
				Width:  int(widthPts * float64(s.dpi) / 72),
				Height: int(heightPts * float64(s.dpi) / 72),
			}
		}
	}

	scale := float64(s.dpi) / 72
	if img.Width > 0 && widthPts > 0 {
		// Match the actual raster, which may have been downscaled.
		scale = float64(img.Width) / widthPts
	}

	content := p.Content()
	runs := layout.RunsFromChars(content.Text)

	// PDF Y grows upward from the page bottom; the raster's origin is the
	// top-left corner.
	viewport := layout.Matrix{scale, 0, 0, -scale, 0, heightPts * scale}

	return &renderedPage{image: img, runs: runs, viewport: viewport}, nil
}

// pageSize resolves the page's MediaBox, walking up the page tree for
// inherited values. Malformed documents get US Letter.
func pageSize(p pdf.Page) (width, height float64) {
	v := p.V
	for i := 0; i < 16 && !v.IsNull(); i++ {
		mb := v.Key("MediaBox")
		if !mb.IsNull() && mb.Len() == 4 {
			x0 := mb.Index(0).Float64()
			y0 := mb.Index(1).Float64()
			x1 := mb.Index(2).Float64()
			y1 := mb.Index(3).Float64()
			return x1 - x0, y1 - y0
		}
		v = v.Key("Parent")
	}
	return 612, 792
}
