package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/docuparse/invoice-extractor/constants"
)

// uploadedFile is a scoped remote resource: acquired before the
// generate call, deleted in a cleanup step that runs regardless of the
// call's outcome.
type uploadedFile struct {
	Name     string `json:"name"` // resource name, e.g. "files/abc123"
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
}

// uploadFile pushes the document bytes to the provider's file store and
// returns the remote handle.
func (c *Client) uploadFile(ctx context.Context, path string) (*uploadedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	mimeType := constants.MimeTypeForExt(filepath.Ext(path))

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/upload/v1beta/files?key=" + c.cfg.APIKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mimeType)
	req.Header.Set("X-Goog-Upload-Protocol", "raw")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload document: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.log.Warn("gemini.upload.body_close_error", "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("upload status %d: %s", resp.StatusCode, string(raw))
	}

	var out struct {
		File uploadedFile `json:"file"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	if out.File.URI == "" {
		return nil, fmt.Errorf("upload response missing file uri")
	}
	if out.File.MimeType == "" {
		out.File.MimeType = mimeType
	}
	return &out.File, nil
}

// deleteFile removes a remote file handle. Best effort is not enough for
// the caller's contract, so failures are logged loudly; but a delete
// failure never masks the result of the call it cleans up after.
func (c *Client) deleteFile(ctx context.Context, name string) {
	if name == "" {
		return
	}
	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1beta/" + name + "?key=" + c.cfg.APIKey
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		c.log.Error("gemini.files.delete_build_error", "name", name, "error", err)
		return
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("gemini.files.delete_error", "name", name, "error", err)
		return
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(resp.Body)
		c.log.Error("gemini.files.delete_status", "name", name, "status", resp.StatusCode, "body", string(body))
		return
	}
	c.log.Debug("gemini.files.deleted", "name", name)
}
