// Package file provides a local filesystem storage backend for processed images.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Storage stores files under a base directory on the local filesystem.
type Storage struct {
	baseDir string
}

// NewStorage creates a Storage rooted at baseDir.
func NewStorage(baseDir string) *Storage {
	return &Storage{baseDir: baseDir}
}

// Save writes src to baseDir/relPath, creating any missing directories.
// relPath uses forward slashes; it is converted to the host convention here.
func (s *Storage) Save(_ context.Context, relPath string, src io.Reader) (string, error) {
	dstPath := filepath.Join(s.baseDir, filepath.FromSlash(relPath))

	if err := os.MkdirAll(filepath.Dir(dstPath), os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", dstPath, err)
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", dstPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to save file %s: %w", dstPath, err)
	}

	return dstPath, nil
}

// Load opens a previously saved file and returns a reader.
func (s *Storage) Load(_ context.Context, relPath string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.baseDir, filepath.FromSlash(relPath)))
}

// Delete removes the file at relPath.
func (s *Storage) Delete(_ context.Context, relPath string) error {
	return os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(relPath)))
}
