package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/docuparse/invoice-extractor/constants"
	"github.com/docuparse/invoice-extractor/internal/common"
	"github.com/docuparse/invoice-extractor/internal/entity"
	"github.com/docuparse/invoice-extractor/internal/export"
	"github.com/docuparse/invoice-extractor/internal/llm/gemini"
	"github.com/docuparse/invoice-extractor/internal/ocr"
	"github.com/docuparse/invoice-extractor/internal/pipeline"
	"github.com/docuparse/invoice-extractor/internal/tabular"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	// Parse CLI flags
	var (
		dir      = flag.String("dir", "", "directory of documents to process (required)")
		fast     = flag.Bool("fast", false, "skip the OCR enrichment step")
		out      = flag.String("out", "", "output JSON file path (default: stdout)")
		xlsxPath = flag.String("xlsx", "", "also write extracted invoices to this XLSX file")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Collect documents with allowed extensions, skipping hidden files
	paths, err := collectDocuments(*dir)
	if err != nil {
		logger.Error("failed to scan directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	if len(paths) == 0 {
		printError("No documents with allowed extensions found in %s\n", *dir)
		os.Exit(1)
	}
	logger.Info("batch starting", "dir", *dir, "files", len(paths), "fast_mode", *fast)

	// Wire the pipeline the same way the server does
	visionClient := ocr.NewVisionClient(ocr.VisionConfig{
		Endpoint:     cfg.OCR.Endpoint,
		APIKey:       cfg.OCR.APIKey,
		ReceiptModel: cfg.OCR.ReceiptModel,
		LayoutModel:  cfg.OCR.LayoutModel,
		Timeout:      cfg.OCR.Timeout,
	}, logger)
	textExtractor := ocr.NewExtractor(visionClient, logger)

	geminiClient := gemini.NewClient(gemini.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	aggregator := tabular.NewAggregator(geminiClient, logger)
	processor := pipeline.NewProcessor(logger, textExtractor, geminiClient, aggregator)

	results := processor.ProcessBatch(ctx, paths, *fast)

	// Tally the outcome for the summary line
	invoices := make([]entity.Extraction, 0, len(results))
	failures := 0
	for _, r := range results {
		switch v := r.(type) {
		case entity.Extraction:
			invoices = append(invoices, v)
		case entity.FileError:
			failures++
		}
	}

	// JSON output
	encoded, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		logger.Error("failed to encode results", "error", err)
		os.Exit(1)
	}
	if *out == "" {
		fmt.Println(string(encoded))
	} else if err := os.WriteFile(*out, encoded, 0o644); err != nil {
		logger.Error("failed to write output file", "path", *out, "error", err)
		os.Exit(1)
	}

	// Optional XLSX output
	if *xlsxPath != "" {
		xlsxBytes, err := export.WriteInvoicesXLSX(invoices, logger)
		if err != nil {
			logger.Error("failed to build xlsx", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*xlsxPath, xlsxBytes, 0o644); err != nil {
			logger.Error("failed to write xlsx file", "path", *xlsxPath, "error", err)
			os.Exit(1)
		}
	}

	logger.Info("batch complete",
		"files", len(paths),
		"invoices", len(invoices),
		"failures", failures,
	)
	printError("Processed %d files: %d invoices, %d failures\n", len(paths), len(invoices), failures)
}

// collectDocuments walks root and returns files whose extension the
// pipeline accepts, skipping hidden files and directories.
func collectDocuments(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		base := filepath.Base(path)
		if strings.HasPrefix(base, ".") {
			if d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(path))
		if _, ok := constants.AllowedExtensions[ext]; ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk: %w", err)
	}
	return paths, nil
}
