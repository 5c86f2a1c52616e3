// Package layout derives word-level hit boxes for a rendered page from the
// document's positioned text runs. Boxes are expressed in device pixels with
// a top-left origin, relative to the rendered page image.
package layout

import (
	"strings"

	"github.com/qirtas-app/qirtas/internal/arabic"
)

// Diagnostic reasons surfaced when a page's text layer is not usable.
const (
	ReasonEmbeddedGlyphs = "embedded-glyphs"
	ReasonNoWords        = "no-words"
)

// WordBox is one hit-testable unit on a rendered page.
type WordBox struct {
	Text     string  `json:"text"`
	Left     float64 `json:"left"`
	Top      float64 `json:"top"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	LineText string  `json:"lineText"`
}

// TextRun is one positioned text run from the document's text layer. Width is
// the run's intrinsic advance width; Transform locates the run's baseline
// origin, to be composed with the page viewport transform.
type TextRun struct {
	Text      string
	Width     float64
	Transform Matrix
}

// Result is the outcome of a text-layer layout attempt for one page.
type Result struct {
	Words  []WordBox
	Usable bool
	Reason string
}

// Engine converts text runs to word boxes. The thresholds are heuristic
// defaults inherited from field tuning and are configurable, not contractual.
type Engine struct {
	// MinScriptRunRatio is the minimum fraction of Arabic runs for the text
	// layer to be trusted; below it the embedded text is presumed to be
	// non-Unicode glyph junk.
	MinScriptRunRatio float64
	// MinWords is the minimum number of word pieces for a usable page.
	MinWords int
	// HeightPad scales box height to cover ascenders and descenders.
	HeightPad float64
	// MinBoxWidth keeps single-character boxes hit-testable.
	MinBoxWidth float64
}

// NewEngine returns an engine with the default thresholds.
func NewEngine() *Engine {
	return &Engine{
		MinScriptRunRatio: 0.2,
		MinWords:          3,
		HeightPad:         1.15,
		MinBoxWidth:       3,
	}
}

// LayoutPage converts a page's text runs into word boxes in device pixel
// space and judges whether the result is a usable text layer. Runs that are
// empty after trimming are ignored entirely; runs that are not mostly Arabic
// count against the script-run ratio but produce no boxes.
func (e *Engine) LayoutPage(runs []TextRun, viewport Matrix) Result {
	var words []WordBox
	total := 0
	arabicRuns := 0

	for _, run := range runs {
		trimmed := strings.TrimSpace(run.Text)
		if trimmed == "" {
			continue
		}
		total++
		if !arabic.IsMostlyArabic(trimmed) {
			continue
		}
		arabicRuns++
		words = append(words, e.layoutRun(run, trimmed, viewport)...)
	}

	if total > 0 && float64(arabicRuns)/float64(total) < e.MinScriptRunRatio {
		return Result{Words: nil, Usable: false, Reason: ReasonEmbeddedGlyphs}
	}
	if len(words) < e.MinWords {
		return Result{Words: nil, Usable: false, Reason: ReasonNoWords}
	}
	return Result{Words: words, Usable: true}
}

// layoutRun splits one run into word boxes, distributing the run's width over
// the pieces proportionally to their character counts.
func (e *Engine) layoutRun(run TextRun, trimmed string, viewport Matrix) []WordBox {
	m := viewport.Mul(run.Transform)
	baselineX, baselineY := m.Origin()
	height := m.VerticalScale()
	width := run.Width * m.HorizontalScale()

	lineText := strings.Join(strings.Fields(trimmed), " ")
	pieces := strings.Fields(trimmed)
	if len(pieces) == 0 {
		return nil
	}

	totalChars := 0
	for _, p := range pieces {
		totalChars += len([]rune(p))
	}
	if totalChars == 0 {
		return nil
	}

	// One character's worth of advance doubles as the inter-piece gap.
	gap := width / float64(totalChars)

	boxes := make([]WordBox, 0, len(pieces))
	cursor := baselineX
	for _, p := range pieces {
		share := width * float64(len([]rune(p))) / float64(totalChars)
		boxWidth := share - gap
		if boxWidth < e.MinBoxWidth {
			boxWidth = e.MinBoxWidth
		}
		boxes = append(boxes, WordBox{
			Text:     p,
			Left:     cursor,
			Top:      baselineY - height,
			Width:    boxWidth,
			Height:   height * e.HeightPad,
			LineText: lineText,
		})
		cursor += share
	}
	return boxes
}
