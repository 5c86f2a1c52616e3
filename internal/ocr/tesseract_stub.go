//go:build !cgo || !ocr

package ocr

import (
	"context"
	"fmt"
)

// TesseractEngine is a stub for builds without Tesseract/CGO support.
type TesseractEngine struct{}

// NewTesseractEngine creates a stub engine that reports unavailability.
func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{}
}

func (e *TesseractEngine) Name() string {
	return "tesseract (unavailable)"
}

func (e *TesseractEngine) Recognize(ctx context.Context, image []byte, language string) (*Overlay, error) {
	return nil, fmt.Errorf("OCR not available: built without Tesseract support")
}
