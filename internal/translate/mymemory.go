package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// DefaultMyMemoryEndpoint is the public MyMemory API.
const DefaultMyMemoryEndpoint = "https://api.mymemory.translated.net/get"

// MyMemory calls the MyMemory translation API.
type MyMemory struct {
	endpoint string
	client   *http.Client
}

// NewMyMemory creates a client. An empty endpoint falls back to the public
// API.
func NewMyMemory(endpoint string, client *http.Client) *MyMemory {
	if endpoint == "" {
		endpoint = DefaultMyMemoryEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &MyMemory{endpoint: endpoint, client: client}
}

func (t *MyMemory) Name() string {
	return "mymemory"
}

// Translate queries /get?q=..&langpair=source|target. The nested
// responseData shape is tried first, then the generic translatedText shapes.
func (t *MyMemory) Translate(ctx context.Context, text, source, target string) (string, error) {
	q := url.Values{}
	q.Set("q", text)
	q.Set("langpair", source+"|"+target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build translation request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("translation call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read translation response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("translation returned status %d", resp.StatusCode)
	}

	var wrapped struct {
		ResponseData struct {
			TranslatedText string `json:"translatedText"`
		} `json:"responseData"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.ResponseData.TranslatedText != "" {
		return wrapped.ResponseData.TranslatedText, nil
	}

	return extractTranslatedText(body), nil
}
