package ocr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelForExt(t *testing.T) {
	cfg := VisionConfig{ReceiptModel: "TEXT_DETECTION", LayoutModel: "DOCUMENT_TEXT_DETECTION"}

	assert.Equal(t, "DOCUMENT_TEXT_DETECTION", modelForExt(cfg, ".xlsx"))
	assert.Equal(t, "DOCUMENT_TEXT_DETECTION", modelForExt(cfg, ".XLS"))
	assert.Equal(t, "TEXT_DETECTION", modelForExt(cfg, ".pdf"))
	assert.Equal(t, "TEXT_DETECTION", modelForExt(cfg, ".jpg"))
	assert.Equal(t, "TEXT_DETECTION", modelForExt(cfg, ""))
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAnnotateReadsFullTextAnnotation(t *testing.T) {
	var gotFeature string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Requests []struct {
				Features []struct {
					Type string `json:"type"`
				} `json:"features"`
			} `json:"requests"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotFeature = req.Requests[0].Features[0].Type

		_ = json.NewEncoder(w).Encode(map[string]any{
			"responses": []map[string]any{
				{"fullTextAnnotation": map[string]any{"text": "INVOICE 42\nTOTAL 236.00"}},
			},
		})
	}))
	defer srv.Close()

	client := NewVisionClient(VisionConfig{Endpoint: srv.URL, APIKey: "test"}, nil)
	path := writeDoc(t, t.TempDir(), "invoice.jpg", "jpegbytes")

	text, err := client.Annotate(context.Background(), path, "TEXT_DETECTION")
	require.NoError(t, err)
	assert.Equal(t, "INVOICE 42\nTOTAL 236.00", text)
	assert.Equal(t, "TEXT_DETECTION", gotFeature)
}

func TestAnnotateFallsBackToTextAnnotations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"responses": []map[string]any{
				{"textAnnotations": []map[string]any{{"description": "RECEIPT"}}},
			},
		})
	}))
	defer srv.Close()

	client := NewVisionClient(VisionConfig{Endpoint: srv.URL, APIKey: "test"}, nil)
	path := writeDoc(t, t.TempDir(), "r.png", "png")

	text, err := client.Annotate(context.Background(), path, "TEXT_DETECTION")
	require.NoError(t, err)
	assert.Equal(t, "RECEIPT", text)
}

func TestAnnotateSurfacesPerResponseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"responses": []map[string]any{
				{"error": map[string]any{"message": "Bad image data"}},
			},
		})
	}))
	defer srv.Close()

	client := NewVisionClient(VisionConfig{Endpoint: srv.URL, APIKey: "test"}, nil)
	path := writeDoc(t, t.TempDir(), "broken.jpg", "not an image")

	_, err := client.Annotate(context.Background(), path, "TEXT_DETECTION")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bad image data")
}

func TestExtractAllDegradesFailedPaths(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"responses": []map[string]any{
				{"fullTextAnnotation": map[string]any{"text": "OK"}},
			},
		})
	}))
	defer srv.Close()

	client := NewVisionClient(VisionConfig{Endpoint: srv.URL, APIKey: "test"}, nil)
	ex := NewExtractor(client, nil)

	dir := t.TempDir()
	a := writeDoc(t, dir, "a.jpg", "x")
	b := writeDoc(t, dir, "b.jpg", "y")

	out := ex.ExtractAll(context.Background(), []string{a, b})
	require.Len(t, out, 2)
	// one call failed, one succeeded; neither produced an error
	texts := []string{out["a.jpg"], out["b.jpg"]}
	assert.Contains(t, texts, "")
	assert.Contains(t, texts, "OK")
}
