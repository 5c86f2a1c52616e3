package ocr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpaceEngineRecognize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "ara", r.FormValue("language"))
		assert.Equal(t, "true", r.FormValue("isOverlayRequired"))
		assert.Equal(t, "2", r.FormValue("OCREngine"))
		assert.Contains(t, r.FormValue("base64Image"), "data:image/png;base64,")
		assert.Equal(t, "test-key", r.Header.Get("apikey"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"ParsedResults": [{
				"TextOverlay": {
					"Lines": [{
						"LineText": "كتاب جديد",
						"Words": [
							{"WordText": "كتاب", "Left": 12, "Top": 30, "Width": 40, "Height": 16},
							{"WordText": "جديد", "Left": 60, "Top": 30, "Width": 38, "Height": 16}
						]
					}],
					"HasOverlay": true
				},
				"ParsedText": "كتاب جديد"
			}],
			"IsErroredOnProcessing": false
		}`))
	}))
	defer srv.Close()

	engine := NewSpaceEngine(srv.URL, "test-key", 2, srv.Client())
	assert.Equal(t, "ocrspace-2", engine.Name())

	overlay, err := engine.Recognize(context.Background(), []byte("fake-png"), "ara")
	require.NoError(t, err)
	require.Equal(t, 2, overlay.WordCount())
	assert.Equal(t, "كتاب جديد", overlay.Lines[0].Text)
	assert.Equal(t, 12.0, overlay.Lines[0].Words[0].Left)
	assert.Equal(t, "كتاب جديد", overlay.Text)
}

func TestSpaceEnginePartialResponse(t *testing.T) {
	// Missing overlay, missing words, absent fields: parses to zero words,
	// not a crash.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ParsedResults": [{}]}`))
	}))
	defer srv.Close()

	engine := NewSpaceEngine(srv.URL, "", 1, srv.Client())
	overlay, err := engine.Recognize(context.Background(), nil, "ara")
	require.NoError(t, err)
	assert.Equal(t, 0, overlay.WordCount())
}

func TestSpaceEngineProcessingError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"IsErroredOnProcessing": true, "ErrorMessage": ["file too large"]}`))
	}))
	defer srv.Close()

	engine := NewSpaceEngine(srv.URL, "", 2, srv.Client())
	_, err := engine.Recognize(context.Background(), nil, "ara")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file too large")
}

func TestSpaceEngineHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	engine := NewSpaceEngine(srv.URL, "", 2, srv.Client())
	_, err := engine.Recognize(context.Background(), nil, "ara")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestSpaceEngineMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway error</html>`))
	}))
	defer srv.Close()

	engine := NewSpaceEngine(srv.URL, "", 2, srv.Client())
	_, err := engine.Recognize(context.Background(), nil, "ara")
	assert.Error(t, err)
}

func TestErrorMessageShapes(t *testing.T) {
	assert.Equal(t, "unknown error", errorMessage(nil))
	assert.Equal(t, "quota", errorMessage([]byte(`"quota"`)))
	assert.Equal(t, "a; b", errorMessage([]byte(`["a","b"]`)))
	assert.Equal(t, `{"odd":1}`, errorMessage([]byte(`{"odd":1}`)))
}
