package staging

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"
)

// Service writes uploaded files into a per-batch directory under root
// before the pipeline runs. Staging failure is the one error the batch
// endpoint escalates to the caller.
type Service struct {
	root   string
	keep   bool
	logger *slog.Logger
}

func NewService(root string, keep bool, logger *slog.Logger) *Service {
	if root == "" {
		root = "./uploaded_files"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{root: root, keep: keep, logger: logger}
}

// Stage saves every upload under {root}/{timestamp}/{filename} and
// returns the batch directory plus the saved paths in upload order.
func (s *Service) Stage(files []*multipart.FileHeader) (string, []string, error) {
	batchDir := filepath.Join(s.root, time.Now().Format("20060102_150405"))
	if err := os.MkdirAll(batchDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create staging dir: %w", err)
	}

	paths := make([]string, 0, len(files))
	for _, fh := range files {
		// strip any client-supplied directory components
		dst := filepath.Join(batchDir, filepath.Base(fh.Filename))
		if err := saveUpload(fh, dst); err != nil {
			return batchDir, nil, fmt.Errorf("stage %s: %w", fh.Filename, err)
		}
		paths = append(paths, dst)
		s.logger.Info("staging.saved", "file", filepath.Base(dst), "bytes", fh.Size)
	}
	return batchDir, paths, nil
}

// Cleanup removes a staged batch directory unless the service is
// configured to keep them.
func (s *Service) Cleanup(batchDir string) {
	if s.keep || batchDir == "" {
		return
	}
	if err := os.RemoveAll(batchDir); err != nil {
		s.logger.Warn("staging.cleanup_error", "dir", batchDir, "error", err)
		return
	}
	s.logger.Debug("staging.cleaned", "dir", batchDir)
}

func saveUpload(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer func() {
		_ = src.Close()
	}()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	if _, err := io.Copy(out, src); err != nil {
		return err
	}
	return nil
}
