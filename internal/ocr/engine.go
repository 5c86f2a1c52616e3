package ocr

import "context"

// Engine recognizes a page raster and returns the word overlay. Engines are
// expected to align overlay coordinates with the submitted image's pixel
// space.
type Engine interface {
	// Name returns the engine name for diagnostics and metrics.
	Name() string

	// Recognize runs recognition on an encoded raster (PNG or JPEG) in the
	// given language. A transport failure or non-success response is an
	// error; callers treat errors as zero overlay words.
	Recognize(ctx context.Context, image []byte, language string) (*Overlay, error)
}
