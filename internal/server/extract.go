package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// handleExtract accepts a multipart batch of documents plus an optional
// fast_mode flag, stages them to disk, and runs the pipeline. The
// response is 200 even for partial failure: successful invoices and
// per-file error records share the same result list. Only a staging
// failure is a request failure.
func (s *Server) handleExtract(c *gin.Context) {
	start := time.Now()

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, Envelope{
			Message:    "invalid multipart form: " + err.Error(),
			Data:       []any{},
			StatusCode: http.StatusBadRequest,
		})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, Envelope{
			Message:    "no files uploaded",
			Data:       []any{},
			StatusCode: http.StatusBadRequest,
		})
		return
	}

	fastMode := false
	if v := c.PostForm("fast_mode"); v != "" {
		fastMode, _ = strconv.ParseBool(v)
	}

	batchDir, paths, err := s.staging.Stage(files)
	if err != nil {
		s.logger.Error("extract.staging_failed", "error", err)
		c.JSON(http.StatusInternalServerError, Envelope{
			Message:    "failed to stage uploaded files: " + err.Error(),
			Data:       []any{},
			StatusCode: http.StatusInternalServerError,
		})
		return
	}
	defer s.staging.Cleanup(batchDir)

	s.logger.Info("extract.batch.start", "files", len(paths), "fast_mode", fastMode)
	results := s.processor.ProcessBatch(c.Request.Context(), paths, fastMode)
	s.logger.Info("extract.batch.done",
		"files", len(paths),
		"results", len(results),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	c.JSON(http.StatusOK, Envelope{
		Message:    "extraction completed",
		Data:       results,
		StatusCode: http.StatusOK,
	})
}
