package ocr

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/docuparse/invoice-extractor/constants"
)

// TextExtractor obtains raw text from a single document. This is an
// optimization step: the orchestrator treats a failure as "no text
// available" and continues without enrichment.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// Extractor routes a document to the text-extraction service, choosing
// the model by file format: spreadsheets get the layout-capable model,
// everything else the receipt-specialized one.
type Extractor struct {
	client *VisionClient
	logger *slog.Logger
}

func NewExtractor(client *VisionClient, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{client: client, logger: logger}
}

// ExtractText implements TextExtractor.
func (e *Extractor) ExtractText(ctx context.Context, path string) (string, error) {
	start := time.Now()
	model := modelForExt(e.client.cfg, filepath.Ext(path))

	text, err := e.client.Annotate(ctx, path, model)
	if err != nil {
		e.logger.Warn("ocr.extract.failed", "path", filepath.Base(path), "model", model, "error", err)
		return "", err
	}
	e.logger.Debug("ocr.extract.ok",
		"path", filepath.Base(path),
		"model", model,
		"text_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

// ExtractAll fans sub-extractions out concurrently and joins before
// returning. A failed path yields an empty string, never an error: one
// unreadable image must not poison the others.
func (e *Extractor) ExtractAll(ctx context.Context, paths []string) map[string]string {
	results := make([]string, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			text, err := e.ExtractText(gctx, p)
			if err != nil {
				return nil
			}
			results[i] = text
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]string, len(paths))
	for i, p := range paths {
		out[filepath.Base(p)] = results[i]
	}
	return out
}

func modelForExt(cfg VisionConfig, ext string) string {
	if constants.MapExtToFormat(ext) == constants.SPREADSHEET {
		return cfg.LayoutModel
	}
	return cfg.ReceiptModel
}
