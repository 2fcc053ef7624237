package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStorageClient stores checkpoints on the local filesystem under a
// base directory.
type LocalStorageClient struct {
	baseDir string
}

// NewLocalStorageClient creates a new local storage client
func NewLocalStorageClient(baseDir string) (*LocalStorageClient, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory %s: %w", baseDir, err)
	}

	return &LocalStorageClient{
		baseDir: baseDir,
	}, nil
}

// Close is a no-op for local storage (implements same interface as GCSClient)
func (l *LocalStorageClient) Close() error {
	return nil
}

// CreateDir creates a directory under the base directory
func (l *LocalStorageClient) CreateDir(ctx context.Context, dirPath string) error {
	full := filepath.Join(l.baseDir, dirPath)
	if err := os.MkdirAll(full, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", full, err)
	}
	return nil
}

// StoreFile writes a file under the base directory, creating parents
func (l *LocalStorageClient) StoreFile(ctx context.Context, filePath string, fileData []byte) error {
	full := filepath.Join(l.baseDir, filePath)

	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(full), err)
	}

	if err := os.WriteFile(full, fileData, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", full, err)
	}

	return nil
}

// GetFile reads a file from under the base directory
func (l *LocalStorageClient) GetFile(ctx context.Context, filePath string) ([]byte, error) {
	full := filepath.Join(l.baseDir, filePath)
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", full, err)
	}
	return data, nil
}

// ListDir lists the files under a directory, returning paths relative to
// the base directory
func (l *LocalStorageClient) ListDir(ctx context.Context, dirPath string, recursive bool) ([]string, error) {
	root := filepath.Join(l.baseDir, dirPath)

	var paths []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if info.IsDir() {
			if !recursive && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(l.baseDir, path)
		if err != nil {
			return nil
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", root, err)
	}
	return paths, nil
}

// FileExists checks whether a file exists under the base directory
func (l *LocalStorageClient) FileExists(ctx context.Context, filePath string) (bool, error) {
	full := filepath.Join(l.baseDir, filePath)
	info, err := os.Stat(full)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}
