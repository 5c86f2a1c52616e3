// Package ocr recognizes page rasters through a two-engine fallback cascade
// and converts the recognized overlay into word boxes aligned with the page
// image.
package ocr

import (
	"strings"

	"github.com/qirtas-app/qirtas/internal/layout"
)

// Word is one recognized word with its bounding box in the image's own pixel
// space. No further transform is needed; the engines align their output with
// the rendered page raster.
type Word struct {
	Text   string  `json:"text"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Line is one recognized line. Text may be empty when the engine reports only
// the constituent words.
type Line struct {
	Text  string `json:"text"`
	Words []Word `json:"words"`
}

// Overlay is the parsed recognition result for one page image. All fields
// tolerate absence; a partially malformed engine response parses to an
// overlay with fewer (or zero) words rather than failing.
type Overlay struct {
	Lines []Line `json:"lines"`
	Text  string `json:"text"`
}

// WordCount returns the number of words across all lines.
func (o *Overlay) WordCount() int {
	if o == nil {
		return 0
	}
	n := 0
	for _, l := range o.Lines {
		n += len(l.Words)
	}
	return n
}

// WordBoxes converts the overlay into layout word boxes. A line without
// reported text gets its words joined by single spaces as the line text.
func (o *Overlay) WordBoxes() []layout.WordBox {
	if o == nil {
		return nil
	}
	var boxes []layout.WordBox
	for _, l := range o.Lines {
		lineText := l.Text
		if lineText == "" {
			parts := make([]string, 0, len(l.Words))
			for _, w := range l.Words {
				parts = append(parts, w.Text)
			}
			lineText = strings.Join(parts, " ")
		}
		for _, w := range l.Words {
			boxes = append(boxes, layout.WordBox{
				Text:     w.Text,
				Left:     w.Left,
				Top:      w.Top,
				Width:    w.Width,
				Height:   w.Height,
				LineText: lineText,
			})
		}
	}
	return boxes
}
