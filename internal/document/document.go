// Package document runs the per-page pipeline: render a page, attempt
// text-layer word layout, fall back to the OCR cascade when the text layer
// is unusable, and assemble immutable page records.
package document

import (
	"github.com/google/uuid"

	"github.com/qirtas-app/qirtas/internal/layout"
)

// Mode says which path produced a page's word boxes.
type Mode string

const (
	// ModeText means the embedded text layer was usable.
	ModeText Mode = "text"
	// ModeOCR means the OCR cascade produced the boxes.
	ModeOCR Mode = "ocr"
	// ModeNone means no path produced any words.
	ModeNone Mode = "none"
)

// Kind is the accepted document type.
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindDOCX Kind = "docx"
)

// PageImage describes a page's rendered raster. Data is the encoded PNG; it
// is served on its own route, not inlined into JSON.
type PageImage struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Data   []byte `json:"-"`
}

// PageRecord is one processed page. Records are immutable once the pipeline
// has produced them; a new upload replaces the whole collection.
type PageRecord struct {
	Number int              `json:"number"`
	Image  PageImage        `json:"image"`
	Words  []layout.WordBox `json:"words"`
	Mode   Mode             `json:"mode"`
	// Engine names the OCR engine that produced the boxes, empty unless
	// Mode is ModeOCR.
	Engine string `json:"engine,omitempty"`
	// Reason is a human-readable diagnostic for status display, empty when
	// the text layer was usable.
	Reason string `json:"reason,omitempty"`
	// Err marks a per-page rendering failure. The page shows a placeholder;
	// other pages are unaffected.
	Err string `json:"error,omitempty"`
}

// Result is the outcome of processing one uploaded file.
type Result struct {
	ID       uuid.UUID    `json:"id"`
	Filename string       `json:"filename"`
	Kind     Kind         `json:"kind"`
	Pages    []PageRecord `json:"pages"`
}

// WordCount returns the number of word boxes across all pages.
func (r *Result) WordCount() int {
	n := 0
	for _, p := range r.Pages {
		n += len(p.Words)
	}
	return n
}
