package document

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
)

// Rasterizer renders a single PDF page to an encoded PNG raster.
type Rasterizer interface {
	// Rasterize renders page (1-based) of the given PDF at the requested
	// DPI.
	Rasterize(ctx context.Context, pdfData []byte, page int, dpi int) (PageImage, error)
}

// PdftoppmRasterizer shells out to pdftoppm (poppler-utils), the same tool
// the OCR raster path has always relied on.
type PdftoppmRasterizer struct {
	path string
	// MaxWidth bounds the raster width; wider pages are downscaled so the
	// remote OCR API accepts the payload. Zero disables the bound.
	MaxWidth int
}

// NewPdftoppmRasterizer locates pdftoppm in PATH. A missing binary is not an
// error here; Rasterize reports it per call so pages degrade individually.
func NewPdftoppmRasterizer(maxWidth int) *PdftoppmRasterizer {
	path, err := exec.LookPath("pdftoppm")
	if err != nil {
		log.Warn().Msg("pdftoppm not found in PATH, page rasters and OCR fallback will be unavailable")
	}
	return &PdftoppmRasterizer{path: path, MaxWidth: maxWidth}
}

// Available reports whether the pdftoppm binary was found.
func (r *PdftoppmRasterizer) Available() bool {
	return r.path != ""
}

// Rasterize renders one page to PNG and downscales it to MaxWidth if needed.
func (r *PdftoppmRasterizer) Rasterize(ctx context.Context, pdfData []byte, page int, dpi int) (PageImage, error) {
	if r.path == "" {
		return PageImage{}, fmt.Errorf("pdftoppm (poppler-utils) is required for page rendering but not found")
	}
	if dpi <= 0 {
		dpi = 150
	}

	tmpDir, err := os.MkdirTemp("", "qirtas-raster-*")
	if err != nil {
		return PageImage{}, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(pdfPath, pdfData, 0600); err != nil {
		return PageImage{}, fmt.Errorf("failed to write PDF temp file: %w", err)
	}

	outputPrefix := filepath.Join(tmpDir, "page")
	cmd := exec.CommandContext(ctx, r.path,
		"-png",
		"-r", fmt.Sprintf("%d", dpi),
		"-f", fmt.Sprintf("%d", page),
		"-l", fmt.Sprintf("%d", page),
		pdfPath, outputPrefix)

	if output, err := cmd.CombinedOutput(); err != nil {
		return PageImage{}, fmt.Errorf("pdftoppm failed: %w, output: %s", err, string(output))
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return PageImage{}, fmt.Errorf("failed to read temp dir: %w", err)
	}
	var images []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".png") {
			images = append(images, filepath.Join(tmpDir, entry.Name()))
		}
	}
	if len(images) == 0 {
		return PageImage{}, fmt.Errorf("pdftoppm produced no image for page %d", page)
	}
	sort.Strings(images)

	data, err := os.ReadFile(images[0])
	if err != nil {
		return PageImage{}, fmt.Errorf("failed to read raster: %w", err)
	}

	return shrinkToWidth(data, r.MaxWidth)
}

// shrinkToWidth decodes an encoded PNG and downscales it to maxWidth when it
// is wider, preserving aspect ratio.
func shrinkToWidth(data []byte, maxWidth int) (PageImage, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return PageImage{}, fmt.Errorf("failed to decode raster: %w", err)
	}

	if maxWidth <= 0 || cfg.Width <= maxWidth {
		return PageImage{Width: cfg.Width, Height: cfg.Height, Data: data}, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return PageImage{}, fmt.Errorf("failed to decode raster: %w", err)
	}
	resized := imaging.Resize(img, maxWidth, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.PNG); err != nil {
		return PageImage{}, fmt.Errorf("failed to encode raster: %w", err)
	}

	bounds := resized.Bounds()
	return PageImage{Width: bounds.Dx(), Height: bounds.Dy(), Data: buf.Bytes()}, nil
}
