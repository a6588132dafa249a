package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// VisionConfig for the document-understanding service.
type VisionConfig struct {
	Endpoint     string // default https://vision.googleapis.com/v1
	APIKey       string
	ReceiptModel string // feature for receipts/invoices, default TEXT_DETECTION
	LayoutModel  string // layout-capable feature, default DOCUMENT_TEXT_DETECTION
	Timeout      time.Duration
}

// VisionClient posts document bytes to the annotate endpoint and reads
// back the full-text annotation.
type VisionClient struct {
	cfg        VisionConfig
	httpClient *http.Client
	logger     *slog.Logger
}

func NewVisionClient(cfg VisionConfig, logger *slog.Logger) *VisionClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://vision.googleapis.com/v1"
	}
	if cfg.ReceiptModel == "" {
		cfg.ReceiptModel = "TEXT_DETECTION"
	}
	if cfg.LayoutModel == "" {
		cfg.LayoutModel = "DOCUMENT_TEXT_DETECTION"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &VisionClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Annotate runs one feature over one document and returns the extracted text.
func (c *VisionClient) Annotate(ctx context.Context, path, feature string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}

	body := map[string]any{
		"requests": []map[string]any{{
			"image":    map[string]any{"content": base64.StdEncoding.EncodeToString(data)},
			"features": []map[string]any{{"type": feature}},
		}},
	}
	bs, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(c.cfg.Endpoint, "/") + "/images:annotate?key=" + c.cfg.APIKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("vision http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.logger.Warn("vision.response_body_close_error", "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("vision status %d: %s", resp.StatusCode, string(raw))
	}

	var out struct {
		Responses []struct {
			FullTextAnnotation struct {
				Text string `json:"text"`
			} `json:"fullTextAnnotation"`
			TextAnnotations []struct {
				Description string `json:"description"`
			} `json:"textAnnotations"`
			Error *struct {
				Message string `json:"message"`
			} `json:"error"`
		} `json:"responses"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode vision response: %w", err)
	}
	if len(out.Responses) == 0 {
		return "", nil
	}
	r := out.Responses[0]
	if r.Error != nil {
		return "", fmt.Errorf("vision annotate error: %s", r.Error.Message)
	}
	if r.FullTextAnnotation.Text != "" {
		return r.FullTextAnnotation.Text, nil
	}
	if len(r.TextAnnotations) > 0 {
		return r.TextAnnotations[0].Description, nil
	}
	return "", nil
}
