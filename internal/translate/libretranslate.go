package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DefaultLibreEndpoint is the public LibreTranslate instance.
const DefaultLibreEndpoint = "https://libretranslate.com/translate"

// LibreTranslate calls a LibreTranslate-compatible endpoint.
type LibreTranslate struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewLibreTranslate creates a client. An empty endpoint falls back to the
// public instance.
func NewLibreTranslate(endpoint, apiKey string, client *http.Client) *LibreTranslate {
	if endpoint == "" {
		endpoint = DefaultLibreEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &LibreTranslate{endpoint: endpoint, apiKey: apiKey, client: client}
}

func (t *LibreTranslate) Name() string {
	return "libretranslate"
}

// Translate posts {q, source, target} and extracts translatedText from
// whichever reply shape comes back.
func (t *LibreTranslate) Translate(ctx context.Context, text, source, target string) (string, error) {
	payload := map[string]string{
		"q":      text,
		"source": source,
		"target": target,
	}
	if t.apiKey != "" {
		payload["api_key"] = t.apiKey
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode translation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build translation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("translation call failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read translation response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("translation returned status %d", resp.StatusCode)
	}

	return extractTranslatedText(respBody), nil
}
