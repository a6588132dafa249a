package server

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/docuparse/invoice-extractor/internal/staging"
)

// BatchProcessor is what the handlers need from the pipeline.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, paths []string, fastMode bool) []any
}

// Envelope is the JSON shape every endpoint responds with. Data is a
// flat list of invoice objects; per-file failures appear in place as
// {error, file} entries.
type Envelope struct {
	Message    string `json:"message"`
	Data       any    `json:"data"`
	StatusCode int    `json:"status_code"`
}

// Server owns the gin engine and wires the extraction routes.
type Server struct {
	engine    *gin.Engine
	processor BatchProcessor
	staging   *staging.Service
	logger    *slog.Logger
}

func NewServer(processor BatchProcessor, stager *staging.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:    engine,
		processor: processor,
		staging:   stager,
		logger:    logger,
	}

	engine.GET("/", s.handleRoot)
	engine.GET("/healthz", s.handleHealth)
	api := engine.Group("/api/ai")
	api.POST("/extract", s.handleExtract)

	return s
}

// Handler exposes the engine for http.Server and tests.
func (s *Server) Handler() *gin.Engine {
	return s.engine
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(200, Envelope{Message: "invoice extraction service", Data: nil, StatusCode: 200})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
