//go:build cgo && ocr

package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine recognizes rasters with a local Tesseract installation.
// It can replace either remote engine in the cascade for offline
// deployments.
type TesseractEngine struct{}

// NewTesseractEngine creates a local Tesseract engine.
func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{}
}

func (e *TesseractEngine) Name() string {
	return "tesseract"
}

// Recognize runs Tesseract word detection and groups the word boxes into
// lines by vertical overlap.
func (e *TesseractEngine) Recognize(ctx context.Context, image []byte, language string) (*Overlay, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if language != "" {
		if err := client.SetLanguage(language); err != nil {
			return nil, fmt.Errorf("set tesseract language: %w", err)
		}
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("set tesseract image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("tesseract recognition failed: %w", err)
	}

	overlay := &Overlay{}
	var current *Line
	var currentBottom int
	var text strings.Builder

	for _, b := range boxes {
		word := Word{
			Text:   strings.TrimSpace(b.Word),
			Left:   float64(b.Box.Min.X),
			Top:    float64(b.Box.Min.Y),
			Width:  float64(b.Box.Dx()),
			Height: float64(b.Box.Dy()),
		}
		if word.Text == "" {
			continue
		}

		// A word whose top clears the previous line's bottom starts a new
		// line.
		if current == nil || b.Box.Min.Y >= currentBottom {
			overlay.Lines = append(overlay.Lines, Line{})
			current = &overlay.Lines[len(overlay.Lines)-1]
			currentBottom = b.Box.Max.Y
		} else if b.Box.Max.Y > currentBottom {
			currentBottom = b.Box.Max.Y
		}
		current.Words = append(current.Words, word)
		text.WriteString(word.Text)
		text.WriteByte(' ')
	}

	overlay.Text = strings.TrimSpace(text.String())
	return overlay, nil
}
