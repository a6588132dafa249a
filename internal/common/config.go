package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Staging StagingConfig
	OCR     OCRConfig
	LLM     LLMConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// StagingConfig controls where uploaded files are written before processing
type StagingConfig struct {
	Root string
	Keep bool // keep staged batches on disk after the response is sent
}

// OCRConfig holds text-extraction service configuration
type OCRConfig struct {
	Endpoint     string
	APIKey       string
	ReceiptModel string // feature used for receipts/invoices (images, PDFs)
	LayoutModel  string // layout-capable feature used for spreadsheets
	Timeout      time.Duration
}

// LLMConfig holds generative-model configuration
type LLMConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            getEnv("HTTP_ADDR", ":8085"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Staging: StagingConfig{
			Root: getEnv("STAGING_ROOT", "./uploaded_files"),
			Keep: getEnvAsBool("STAGING_KEEP", true),
		},
		OCR: OCRConfig{
			Endpoint:     getEnv("VISION_ENDPOINT", "https://vision.googleapis.com/v1"),
			APIKey:       getEnv("VISION_API_KEY", ""),
			ReceiptModel: getEnv("VISION_RECEIPT_MODEL", "TEXT_DETECTION"),
			LayoutModel:  getEnv("VISION_LAYOUT_MODEL", "DOCUMENT_TEXT_DETECTION"),
			Timeout:      getEnvAsDuration("VISION_TIMEOUT", 60*time.Second),
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			APIKey:      getEnv("GEMINI_API_KEY", ""),
			Model:       getEnv("GEMINI_MODEL", "gemini-2.5-pro"),
			Temperature: getEnvAsFloat32("GEMINI_TEMPERATURE", 0.3),
			Timeout:     getEnvAsDuration("GEMINI_TIMEOUT", 5*time.Minute),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "GEMINI_API_KEY is required", ErrInvalidInput)
	}
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Staging.Root == "" {
		return NewAppError("CONFIG_ERROR", "STAGING_ROOT is required", ErrInvalidInput)
	}
	return nil
}
