package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docuparse/invoice-extractor/internal/common"
	"github.com/docuparse/invoice-extractor/internal/entity"
	"github.com/docuparse/invoice-extractor/internal/llm"
)

// Generate implements llm.StructuredGenerator: uploads the document (if
// any), runs one schema-constrained generateContent call bounded by the
// configured timeout, validates the response locally, and deletes the
// remote file handle whether or not the call succeeded.
func (c *Client) Generate(ctx context.Context, req llm.GenerateRequest) (json.RawMessage, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.generate.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"prompt_len", len(req.Prompt),
		"has_document", req.DocumentPath != "",
	)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	parts := []map[string]any{{"text": req.Prompt}}

	if req.DocumentPath != "" {
		file, err := c.uploadFile(ctx, req.DocumentPath)
		if err != nil {
			c.log.Error("llm.generate.upload_error", "req_id", rid, "error", err)
			return nil, fmt.Errorf("upload document: %w", err)
		}
		// the remote handle is scoped to this call
		defer c.deleteFile(context.WithoutCancel(ctx), file.Name)

		parts = append(parts, map[string]any{
			"file_data": map[string]any{
				"file_uri":  file.URI,
				"mime_type": file.MimeType,
			},
		})
	}

	body := map[string]any{
		"contents": []map[string]any{{"parts": parts}},
		"generationConfig": map[string]any{
			"response_mime_type": "application/json",
			"response_schema":    req.Schema,
			"temperature":        c.cfg.Temperature,
		},
	}

	content, err := c.generateContent(ctx, body)
	if err != nil {
		c.log.Error("llm.generate.error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	// Validate strictly first; fall back to one sanitize pass for the
	// usual model slips (formatted numbers, float-artifact phones).
	if err := llm.ValidateJSONAgainstSchema(req.Schema, content); err != nil {
		cleaned, adjusted, sErr := llm.SanitizeExtraction(content, c.log)
		if sErr != nil {
			c.log.Error("llm.generate.sanitize_failed", "req_id", rid, "error", sErr)
			return nil, fmt.Errorf("schema validation failed: %w", err)
		}
		if vErr := llm.ValidateJSONAgainstSchema(req.Schema, cleaned); vErr != nil {
			c.log.Error("llm.generate.schema_validation_failed",
				"req_id", rid, "error", vErr, "content", string(content),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return nil, fmt.Errorf("schema validation failed: %w", vErr)
		}
		c.log.Warn("llm.generate.lenient_sanitize_applied",
			"req_id", rid, "adjusted", adjusted,
		)
		content = cleaned
	}

	c.log.Info("llm.generate.ok",
		"req_id", rid,
		"bytes", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

// MapHeaders implements llm.HeaderMapper with a text-only call: no file
// upload, just the header list and the mapping schema.
func (c *Client) MapHeaders(ctx context.Context, headers []string) (entity.HeaderMapping, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.map_headers.start", "req_id", rid, "headers", len(headers))

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	schema := llm.BuildHeaderMappingSchema()
	body := map[string]any{
		"contents": []map[string]any{{
			"parts": []map[string]any{{"text": llm.BuildHeaderMappingPrompt(headers)}},
		}},
		"generationConfig": map[string]any{
			"response_mime_type": "application/json",
			"response_schema":    schema,
			"temperature":        0.0,
		},
	}

	content, err := c.generateContent(ctx, body)
	if err != nil {
		c.log.Error("llm.map_headers.error", "req_id", rid, "error", err)
		return entity.HeaderMapping{}, err
	}
	if err := llm.ValidateJSONAgainstSchema(schema, content); err != nil {
		c.log.Error("llm.map_headers.schema_validation_failed", "req_id", rid, "error", err, "content", string(content))
		return entity.HeaderMapping{}, fmt.Errorf("schema validation failed: %w", err)
	}

	// json null decodes to the zero string, which is exactly the
	// "no match" value the aggregator expects.
	var out entity.HeaderMapping
	if err := json.Unmarshal(content, &out); err != nil {
		return entity.HeaderMapping{}, fmt.Errorf("unmarshal mapping: %w", err)
	}

	c.log.Info("llm.map_headers.ok", "req_id", rid, "elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}

// generateContent posts one generateContent request and unwraps the
// first candidate's text part. Quota and rate-limit conditions are
// rewritten into common.QuotaError so the orchestrator can surface a
// user-facing message instead of a raw provider body.
func (c *Client) generateContent(ctx context.Context, body map[string]any) ([]byte, error) {
	bs, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1beta/models/" + c.cfg.Model + ":generateContent?key=" + c.cfg.APIKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("generate call timed out after %s: %w", c.cfg.Timeout, err)
		}
		return nil, fmt.Errorf("gemini http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.log.Warn("gemini.response_body_close_error", "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		if resp.StatusCode == http.StatusTooManyRequests || common.LooksLikeQuotaError(string(raw)) {
			return nil, common.NewQuotaError(fmt.Errorf("gemini status %d: %s", resp.StatusCode, string(raw)))
		}
		return nil, fmt.Errorf("gemini status %d: %s", resp.StatusCode, string(raw))
	}

	var cc struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}
	if len(cc.Candidates) == 0 || len(cc.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no candidates in gemini response")
	}
	return []byte(strings.TrimSpace(cc.Candidates[0].Content.Parts[0].Text)), nil
}
