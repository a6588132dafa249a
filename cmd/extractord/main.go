package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/docuparse/invoice-extractor/internal/common"
	"github.com/docuparse/invoice-extractor/internal/llm/gemini"
	"github.com/docuparse/invoice-extractor/internal/ocr"
	"github.com/docuparse/invoice-extractor/internal/pipeline"
	"github.com/docuparse/invoice-extractor/internal/server"
	"github.com/docuparse/invoice-extractor/internal/staging"
	"github.com/docuparse/invoice-extractor/internal/tabular"
)

func main() {
	// Logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Env
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// External collaborators
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
	logger.Info("gemini client initialized", "model", cfg.LLM.Model)

	if cfg.OCR.APIKey == "" {
		logger.Warn("vision API key not configured, extraction runs without OCR enrichment")
	}

	// Pipeline
	aggregator := tabular.NewAggregator(geminiClient, logger)
	processor := pipeline.NewProcessor(logger, textExtractor, geminiClient, aggregator)
	stager := staging.NewService(cfg.Staging.Root, cfg.Staging.Keep, logger)

	// HTTP server
	srv := server.NewServer(processor, stager, logger)
	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("stopped")
}
