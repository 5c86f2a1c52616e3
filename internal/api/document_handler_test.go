package api

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qirtas-app/qirtas/internal/document"
	"github.com/qirtas-app/qirtas/internal/layout"
)

func fakeDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`,
		"_rels/.rels":         `<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`,
		"word/document.xml":   `<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`,
	}
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func multipartUpload(t *testing.T, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func TestUploadDOCXRoundTrip(t *testing.T) {
	server, _ := newTestServer(t)

	data := fakeDocx(t, `<w:p><w:r><w:t>قال الكاتب كلمة أخيرة</w:t></w:r></w:p>`)
	body, contentType := multipartUpload(t, "essay.docx", data)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := server.App().Test(req, 10000)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var uploaded documentResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&uploaded))
	assert.Equal(t, "essay.docx", uploaded.Filename)
	assert.Equal(t, document.KindDOCX, uploaded.Kind)
	require.Equal(t, 1, uploaded.PageCount)
	assert.Equal(t, 4, uploaded.WordCount)
	assert.Equal(t, "text", uploaded.Pages[0].Mode)

	// The document-level response carries summaries, not boxes; the page
	// route returns the full record.
	pageReq := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/documents/%s/pages/1", uploaded.ID), nil)
	pageResp, err := server.App().Test(pageReq)
	require.NoError(t, err)
	defer pageResp.Body.Close()

	require.Equal(t, http.StatusOK, pageResp.StatusCode)

	var page struct {
		Number int              `json:"number"`
		Words  []layout.WordBox `json:"words"`
		Mode   string           `json:"mode"`
	}
	require.NoError(t, json.NewDecoder(pageResp.Body).Decode(&page))
	assert.Equal(t, 1, page.Number)
	require.Len(t, page.Words, 4)
	assert.Equal(t, "قال", page.Words[0].Text)

	// DOCX pages are synthetic flows with no raster.
	imgReq := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/documents/%s/pages/1/image", uploaded.ID), nil)
	imgResp, err := server.App().Test(imgReq)
	require.NoError(t, err)
	defer imgResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, imgResp.StatusCode)

	// Out-of-range page
	badReq := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/documents/%s/pages/9", uploaded.ID), nil)
	badResp, err := server.App().Test(badReq)
	require.NoError(t, err)
	defer badResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, badResp.StatusCode)

	// Delete and verify gone
	delReq := httptest.NewRequest(http.MethodDelete,
		fmt.Sprintf("/api/v1/documents/%s", uploaded.ID), nil)
	delResp, err := server.App().Test(delReq)
	require.NoError(t, err)
	defer delResp.Body.Close()
	assert.Equal(t, http.StatusNoContent, delResp.StatusCode)

	getReq := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/documents/%s", uploaded.ID), nil)
	getResp, err := server.App().Test(getReq)
	require.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	server, _ := newTestServer(t)

	body, contentType := multipartUpload(t, "notes.txt", []byte("plain text, not a document"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := server.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var errBody map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errBody))
	assert.Contains(t, errBody["error"], "unsupported file type")
}

func TestTranslateEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	payload := bytes.NewBufferString(`{"text":"مرحبا بالعالم"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/translate", payload)
	req.Header.Set("Content-Type", "application/json")
	resp, err := server.App().Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "book", body["translated"])
	assert.Equal(t, "ar", body["source"])
	assert.Equal(t, "en", body["target"])
}

func TestTranslateRequiresText(t *testing.T) {
	server, _ := newTestServer(t)

	payload := bytes.NewBufferString(`{"text":""}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/translate", payload)
	req.Header.Set("Content-Type", "application/json")
	resp, err := server.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
