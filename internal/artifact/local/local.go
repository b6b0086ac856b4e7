// Package local implements an artifact store on the local filesystem.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/slok/scraper/internal/artifact"
	"github.com/slok/scraper/internal/log"
)

// StoreConfig is the configuration for the local artifact store.
type StoreConfig struct {
	// Dir is the root directory, artifacts are stored at `<Dir>/<task-id>/<file>`.
	Dir    string
	Logger log.Logger
}

func (c *StoreConfig) defaults() error {
	if c.Dir == "" {
		return fmt.Errorf("dir is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "artifact.Local"})
	return nil
}

// Store copies artifacts into a directory.
type Store struct {
	dir    string
	logger log.Logger
}

// NewStore returns a new local artifact store.
func NewStore(cfg StoreConfig) (*Store, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Store{dir: cfg.Dir, logger: cfg.Logger}, nil
}

// Save copies the file and returns the path of the copy.
func (s *Store) Save(ctx context.Context, taskID, localPath string) (string, error) {
	if taskID == "" {
		return "", fmt.Errorf("task id is required: %w", artifact.ErrArtifact)
	}

	src, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("could not open artifact: %w: %w", err, artifact.ErrArtifact)
	}
	defer src.Close()

	dir := filepath.Join(s.dir, taskID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("could not create artifact directory: %w: %w", err, artifact.ErrArtifact)
	}

	dstPath := filepath.Join(dir, filepath.Base(localPath))
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("could not create artifact: %w: %w", err, artifact.ErrArtifact)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("could not copy artifact: %w: %w", err, artifact.ErrArtifact)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("could not close artifact: %w: %w", err, artifact.ErrArtifact)
	}

	s.logger.Debugf("Artifact for task %s stored at %s", taskID, dstPath)
	return dstPath, nil
}
