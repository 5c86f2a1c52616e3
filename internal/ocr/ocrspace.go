package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultSpaceEndpoint is the public OCR.space API endpoint.
const DefaultSpaceEndpoint = "https://api.ocr.space/parse/image"

// SpaceEngine calls the OCR.space API with a fixed engine number. Two
// instances (engine 2 and engine 1) form the fallback cascade.
type SpaceEngine struct {
	endpoint string
	apiKey   string
	engine   int
	client   *http.Client
}

// NewSpaceEngine creates an OCR.space client for the given engine number.
// An empty endpoint falls back to the public API.
func NewSpaceEngine(endpoint, apiKey string, engine int, client *http.Client) *SpaceEngine {
	if endpoint == "" {
		endpoint = DefaultSpaceEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &SpaceEngine{
		endpoint: endpoint,
		apiKey:   apiKey,
		engine:   engine,
		client:   client,
	}
}

// Name identifies the engine in diagnostics, e.g. "ocrspace-2".
func (e *SpaceEngine) Name() string {
	return fmt.Sprintf("ocrspace-%d", e.engine)
}

// spaceResponse mirrors the OCR.space reply. Every field is optional; absent
// fields decode to zero values so a partially malformed body still parses.
type spaceResponse struct {
	ParsedResults         []spaceParsedResult `json:"ParsedResults"`
	IsErroredOnProcessing bool                `json:"IsErroredOnProcessing"`
	ErrorMessage          json.RawMessage     `json:"ErrorMessage"`
}

type spaceParsedResult struct {
	TextOverlay *spaceTextOverlay `json:"TextOverlay"`
	ParsedText  string            `json:"ParsedText"`
}

type spaceTextOverlay struct {
	Lines      []spaceLine `json:"Lines"`
	HasOverlay bool        `json:"HasOverlay"`
}

type spaceLine struct {
	LineText string      `json:"LineText"`
	Words    []spaceWord `json:"Words"`
}

type spaceWord struct {
	WordText string  `json:"WordText"`
	Left     float64 `json:"Left"`
	Top      float64 `json:"Top"`
	Height   float64 `json:"Height"`
	Width    float64 `json:"Width"`
}

// Recognize submits the raster with an overlay request and parses the reply.
func (e *SpaceEngine) Recognize(ctx context.Context, image []byte, language string) (*Overlay, error) {
	form := url.Values{}
	form.Set("base64Image", "data:image/png;base64,"+base64.StdEncoding.EncodeToString(image))
	form.Set("language", language)
	form.Set("isOverlayRequired", "true")
	form.Set("OCREngine", fmt.Sprintf("%d", e.engine))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build OCR request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if e.apiKey != "" {
		req.Header.Set("apikey", e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("OCR call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("read OCR response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("OCR returned status %d", resp.StatusCode)
	}

	var parsed spaceResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("malformed OCR response: %w", err)
	}

	if parsed.IsErroredOnProcessing {
		return nil, fmt.Errorf("OCR processing error: %s", errorMessage(parsed.ErrorMessage))
	}

	overlay := parsed.toOverlay()
	log.Debug().
		Str("engine", e.Name()).
		Int("words", overlay.WordCount()).
		Msg("OCR overlay parsed")
	return overlay, nil
}

func (r *spaceResponse) toOverlay() *Overlay {
	overlay := &Overlay{}
	var text strings.Builder
	for _, pr := range r.ParsedResults {
		if pr.ParsedText != "" {
			text.WriteString(pr.ParsedText)
		}
		if pr.TextOverlay == nil {
			continue
		}
		for _, l := range pr.TextOverlay.Lines {
			line := Line{Text: l.LineText, Words: make([]Word, 0, len(l.Words))}
			for _, w := range l.Words {
				line.Words = append(line.Words, Word{
					Text:   w.WordText,
					Left:   w.Left,
					Top:    w.Top,
					Width:  w.Width,
					Height: w.Height,
				})
			}
			overlay.Lines = append(overlay.Lines, line)
		}
	}
	overlay.Text = strings.TrimSpace(text.String())
	return overlay
}

// errorMessage renders the ErrorMessage field, which the API returns as
// either a string or an array of strings.
func errorMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "unknown error"
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil && len(many) > 0 {
		return strings.Join(many, "; ")
	}
	return string(raw)
}
