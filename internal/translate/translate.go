// Package translate provides thin clients for the external translation
// services backing hover tooltips and line translation. Response parsing is
// total: a malformed or unexpected body yields an empty translation, which
// callers treat as "translation unavailable", never as a visible error.
package translate

import (
	"context"
	"encoding/json"
)

// Client translates a piece of text between two languages. An empty result
// with a nil error means the service replied but no usable translation could
// be extracted.
type Client interface {
	// Name returns the provider name for diagnostics and metrics.
	Name() string

	// Translate translates text from source to target language.
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// extractTranslatedText accepts the two reply shapes in the wild: an object
// carrying translatedText, or an array whose first element carries it. Any
// other shape yields an empty string.
func extractTranslatedText(body []byte) string {
	var obj struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := json.Unmarshal(body, &obj); err == nil && obj.TranslatedText != "" {
		return obj.TranslatedText
	}

	var arr []struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := json.Unmarshal(body, &arr); err == nil && len(arr) > 0 {
		return arr[0].TranslatedText
	}

	return ""
}
