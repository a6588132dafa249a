package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/docuparse/invoice-extractor/constants"
	"github.com/docuparse/invoice-extractor/internal/common"
	"github.com/docuparse/invoice-extractor/internal/entity"
	"github.com/docuparse/invoice-extractor/internal/llm"
	"github.com/docuparse/invoice-extractor/internal/ocr"
)

// SpreadsheetAggregator is the native (non-AI) tabular path.
type SpreadsheetAggregator interface {
	Aggregate(ctx context.Context, path string) ([]entity.Extraction, error)
}

// Processor is the per-file decision logic: spreadsheets go to the
// native aggregator, everything else through the OCR-then-generate
// path. One file's failure is recorded in place and never aborts the
// batch.
type Processor struct {
	logger     *slog.Logger
	text       ocr.TextExtractor
	gen        llm.StructuredGenerator
	aggregator SpreadsheetAggregator
}

func NewProcessor(logger *slog.Logger, text ocr.TextExtractor, gen llm.StructuredGenerator, aggregator SpreadsheetAggregator) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:     logger,
		text:       text,
		gen:        gen,
		aggregator: aggregator,
	}
}

// ProcessBatch runs the files sequentially, in upload order. Each entry
// in the result list is either an entity.Extraction or an
// entity.FileError standing in for the file that failed. Sequential on
// purpose: it bounds concurrent external-API usage and keeps per-file
// error isolation trivial.
func (p *Processor) ProcessBatch(ctx context.Context, paths []string, fastMode bool) []any {
	results := make([]any, 0, len(paths))
	for _, path := range paths {
		base := filepath.Base(path)
		start := time.Now()

		extractions, err := p.processFile(ctx, path, fastMode)
		if err != nil {
			msg := err.Error()
			if common.IsQuotaError(err) {
				msg = common.QuotaMessage
			}
			p.logger.Error("pipeline.file.failed", "file", base, "error", err)
			results = append(results, entity.FileError{Error: msg, File: base})
			continue
		}

		p.logger.Info("pipeline.file.ok",
			"file", base,
			"invoices", len(extractions),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		for _, ex := range extractions {
			results = append(results, ex)
		}
	}
	return results
}

func (p *Processor) processFile(ctx context.Context, path string, fastMode bool) ([]entity.Extraction, error) {
	format := constants.MapExtToFormat(filepath.Ext(path))
	if format == "" {
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupported, filepath.Ext(path))
	}

	// Native spreadsheet path bypasses the OCR/LLM branch entirely.
	if format == constants.SPREADSHEET {
		return p.aggregator.Aggregate(ctx, path)
	}

	// OCR is an optimization, not a requirement: any failure degrades
	// to "no enrichment text" and the pipeline continues.
	var ocrText string
	if !fastMode {
		text, err := p.text.ExtractText(ctx, path)
		if err != nil {
			p.logger.Warn("pipeline.ocr.degraded", "file", filepath.Base(path), "error", err)
		} else {
			ocrText = text
		}
	}

	raw, err := p.gen.Generate(ctx, llm.GenerateRequest{
		Prompt:       llm.BuildExtractionPrompt(ocrText),
		DocumentPath: path,
		Schema:       llm.BuildInvoiceSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("structured generation: %w", err)
	}

	var ex entity.Extraction
	if err := json.Unmarshal(raw, &ex); err != nil {
		return nil, fmt.Errorf("decode extraction: %w", err)
	}
	if ex.Products == nil {
		ex.Products = []entity.Product{}
	}
	return []entity.Extraction{ex}, nil
}
