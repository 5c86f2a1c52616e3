package document

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"unicode"

	"github.com/nguyenthenguyen/docx"

	"github.com/qirtas-app/qirtas/internal/layout"
)

// Segment is one text run from the rendered document together with its
// owning block (paragraph index). The traversal is structural; it does not
// depend on any particular rendering tree.
type Segment struct {
	Text  string
	Block int
}

// SpanInserter receives one word span per contiguous Arabic run found in a
// segment. Offsets are rune indices into the segment's text. Any rendering
// target can implement it to splice hit targets into its own tree.
type SpanInserter interface {
	Insert(seg Segment, start, end int, word string)
}

// extractSegments walks the DOCX body XML and collects (text run, paragraph)
// pairs in flow order.
func extractSegments(content string) []Segment {
	dec := xml.NewDecoder(strings.NewReader(content))

	var segments []Segment
	block := -1
	inText := false

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				block++
			case "t":
				inText = true
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText && len(t) > 0 {
				b := block
				if b < 0 {
					b = 0
				}
				segments = append(segments, Segment{Text: string(t), Block: b})
			}
		}
	}
	return segments
}

// scanArabicSpans finds contiguous Arabic runs in each segment and hands
// them to the inserter.
func scanArabicSpans(segments []Segment, ins SpanInserter) {
	for _, seg := range segments {
		runes := []rune(seg.Text)
		start := -1
		for i, r := range runes {
			if unicode.Is(unicode.Arabic, r) {
				if start < 0 {
					start = i
				}
				continue
			}
			if start >= 0 {
				ins.Insert(seg, start, i, string(runes[start:i]))
				start = -1
			}
		}
		if start >= 0 {
			ins.Insert(seg, start, len(runes), string(runes[start:len(runes)]))
		}
	}
}

// flowLayout lays word spans out in synthetic flow geometry: one line per
// paragraph, a fixed em box per character. DOCX rendering has no pixel
// geometry of its own; the client styles the container, these boxes only
// keep hover hit-testing uniform across both formats.
type flowLayout struct {
	emWidth    float64
	lineHeight float64
	pageWidth  float64

	words   []layout.WordBox
	cursorX float64
	line    int
}

func newFlowLayout() *flowLayout {
	return &flowLayout{emWidth: 9, lineHeight: 28, pageWidth: 800, line: -1}
}

func (f *flowLayout) Insert(seg Segment, start, end int, word string) {
	if seg.Block != f.line {
		f.line = seg.Block
		f.cursorX = 0
	}
	width := f.emWidth * float64(end-start)
	if width < 3 {
		width = 3
	}
	f.words = append(f.words, layout.WordBox{
		Text:     word,
		Left:     f.cursorX,
		Top:      float64(seg.Block) * f.lineHeight,
		Width:    width,
		Height:   f.lineHeight * 0.8,
		LineText: strings.TrimSpace(seg.Text),
	})
	f.cursorX += width + f.emWidth
}

// processDOCX renders a DOCX upload into a single flow page: structural
// traversal for the text runs, Arabic span scanning, synthetic geometry.
func processDOCX(data []byte) (PageRecord, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return PageRecord{}, fmt.Errorf("failed to read DOCX: %w", err)
	}
	defer doc.Close()

	segments := extractSegments(doc.Editable().GetContent())
	fl := newFlowLayout()
	scanArabicSpans(segments, fl)

	lines := 0
	for _, seg := range segments {
		if seg.Block+1 > lines {
			lines = seg.Block + 1
		}
	}

	rec := PageRecord{
		Number: 1,
		Image: PageImage{
			Width:  int(fl.pageWidth),
			Height: int(float64(lines)*fl.lineHeight + fl.lineHeight),
		},
		Words: fl.words,
		Mode:  ModeText,
	}
	if len(fl.words) == 0 {
		rec.Mode = ModeNone
		rec.Reason = layout.ReasonNoWords
	}
	return rec, nil
}
