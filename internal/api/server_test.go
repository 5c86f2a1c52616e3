package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qirtas-app/qirtas/internal/config"
)

// testConfig returns a config that keeps the server off the network: the
// translation endpoint points at the given test server and OCR at an
// unreachable local address.
func testConfig(translateEndpoint string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Address:      ":0",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			IdleTimeout:  5 * time.Second,
			BodyLimit:    8 * 1024 * 1024,
		},
		Layout: config.LayoutConfig{
			MinScriptRunRatio: 0.2,
			MinWords:          3,
			HeightPad:         1.15,
			MinBoxWidth:       3,
		},
		OCR: config.OCRConfig{
			Provider:       "ocrspace",
			Endpoint:       "http://127.0.0.1:1/parse",
			Language:       "ara",
			PrimaryEngine:  2,
			FallbackEngine: 1,
			Timeout:        time.Second,
			MaxImageWidth:  2048,
			RasterDPI:      150,
		},
		Translate: config.TranslateConfig{
			Provider:   "mymemory",
			Endpoint:   translateEndpoint,
			SourceLang: "ar",
			TargetLang: "en",
		},
		Lexicon: config.LexiconConfig{Path: "testdata/missing-lexicon.json"},
		Cache:   config.CacheConfig{TooltipCapacity: 100},
	}
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	translate := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"responseData":{"translatedText":"book"}}`))
	}))
	t.Cleanup(translate.Close)

	return NewServer(testConfig(translate.URL)), translate
}

func TestServer_Health(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := server.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestServer_NotFound(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/no/such/route", nil)
	resp, err := server.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := server.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "qirtas_")
}

func TestServer_TooltipRequiresWord(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tooltip", nil)
	resp, err := server.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_TooltipResolvesViaTranslation(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tooltip?word=%D9%83%D8%AA%D8%A7%D8%A8", nil)
	resp, err := server.App().Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body tooltipResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "كتاب", body.Word)
	assert.Equal(t, "book", body.Text)
	assert.Equal(t, "translation", body.Source)
}

func TestServer_DocumentNotFound(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/2f0fb9f3-3c9e-4f62-8f6a-000000000001", nil)
	resp, err := server.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_DocumentInvalidID(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/not-a-uuid", nil)
	resp, err := server.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_UploadRequiresFile(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/", nil)
	resp, err := server.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
