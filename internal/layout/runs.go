package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	// rowTolerance is the baseline Y tolerance (in points) for grouping
	// characters into the same run.
	rowTolerance = 2.0
	// wordSpaceMultiplier is the fraction of the font size treated as a word
	// gap when the text layer carries no explicit spaces.
	wordSpaceMultiplier = 0.3
)

type charRun struct {
	chars    []pdf.Text
	baseline float64
}

// RunsFromChars groups a page's positioned characters (as reported by the
// PDF text layer) into baseline-ordered text runs. Characters keep their
// content order within a run, so right-to-left text stays in logical order;
// horizontal gaps wider than a fraction of the font size become spaces so
// the layout engine can split the run into words.
func RunsFromChars(chars []pdf.Text) []TextRun {
	if len(chars) == 0 {
		return nil
	}

	var rows []*charRun
	for _, c := range chars {
		var row *charRun
		for _, r := range rows {
			if math.Abs(c.Y-r.baseline) <= rowTolerance {
				row = r
				break
			}
		}
		if row == nil {
			row = &charRun{baseline: c.Y}
			rows = append(rows, row)
		}
		row.chars = append(row.chars, c)
	}

	// Top of page first; PDF Y grows upward.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].baseline > rows[j].baseline
	})

	runs := make([]TextRun, 0, len(rows))
	for _, row := range rows {
		if run, ok := row.toRun(); ok {
			runs = append(runs, run)
		}
	}
	return runs
}

func (r *charRun) toRun() (TextRun, bool) {
	minX := math.Inf(1)
	maxX := math.Inf(-1)
	fontSize := 0.0

	var b strings.Builder
	var prev pdf.Text
	for i, c := range r.chars {
		if c.FontSize > fontSize {
			fontSize = c.FontSize
		}
		if i > 0 {
			threshold := c.FontSize * wordSpaceMultiplier
			if threshold == 0 {
				threshold = 12 * wordSpaceMultiplier
			}
			if charGap(prev, c) > threshold && !strings.HasSuffix(b.String(), " ") {
				b.WriteByte(' ')
			}
		}
		b.WriteString(c.S)
		if c.X < minX {
			minX = c.X
		}
		if c.X+c.W > maxX {
			maxX = c.X + c.W
		}
		prev = c
	}

	text := b.String()
	if strings.TrimSpace(text) == "" {
		return TextRun{}, false
	}
	if fontSize == 0 {
		fontSize = 12
	}
	return TextRun{
		Text:  text,
		Width: maxX - minX,
		// Unit horizontal basis, font-sized vertical basis, baseline origin;
		// the viewport transform supplies the raster scale.
		Transform: Matrix{1, 0, 0, fontSize, minX, r.baseline},
	}, true
}

// charGap returns the horizontal distance between two character extents,
// regardless of writing direction. Overlapping extents yield zero.
func charGap(a, b pdf.Text) float64 {
	aEnd := a.X + a.W
	bEnd := b.X + b.W
	switch {
	case b.X >= aEnd:
		return b.X - aEnd
	case a.X >= bEnd:
		return a.X - bEnd
	default:
		return 0
	}
}
