package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage writes photos under a base directory. URLs are the configured
// base URL plus the object key, or a file path when no base URL is set.
type LocalStorage struct {
	dir     string
	baseURL string
}

// NewLocalStorage creates the base directory if needed.
func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir %s: %w", dir, err)
	}
	return &LocalStorage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Store writes the object to disk. The content type is ignored; local serving
// infers it from the extension.
func (l *LocalStorage) Store(ctx context.Context, r io.Reader, size int64, key, contentType string) (string, error) {
	path := filepath.Join(l.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create photo dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create photo file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write photo file: %w", err)
	}

	if l.baseURL != "" {
		return l.baseURL + "/" + key, nil
	}
	return path, nil
}
