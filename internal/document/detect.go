package document

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// DetectKind identifies an upload as PDF or DOCX, the only accepted formats.
// The content magic decides; the filename extension only disambiguates DOCX
// from other zip containers. Anything else is rejected before any processing
// starts.
func DetectKind(filename string, data []byte) (Kind, error) {
	if bytes.HasPrefix(data, []byte("%PDF")) {
		return KindPDF, nil
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		// DOCX is a zip container; require the extension so plain zips and
		// other OOXML flavors are not silently accepted.
		if ext == ".docx" {
			return KindDOCX, nil
		}
		return "", fmt.Errorf("unsupported file type %q: only PDF and DOCX are supported", ext)
	}

	if ext == "" {
		ext = "unknown"
	}
	return "", fmt.Errorf("unsupported file type %q: only PDF and DOCX are supported", ext)
}
