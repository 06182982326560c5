// Package storage abstracts where movement photos end up: a directory on
// local disk or an S3-compatible bucket (Cloudflare R2), selected by
// configuration.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"yardgate-backend/config"
)

// Storage stores a binary object and returns the URL to persist.
type Storage interface {
	Store(ctx context.Context, r io.Reader, size int64, key, contentType string) (string, error)
}

// New builds the configured backend.
func New(cfg *config.StorageConfig) (Storage, error) {
	switch cfg.Provider {
	case "local":
		return NewLocalStorage(cfg.LocalDir, cfg.LocalBaseURL)
	case "s3":
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

// BuildPhotoKey generates a stable, collision-free object key:
// photos/{CODE_WITHOUT_DASHES}/movement_{id}/{rand}.{ext}
func BuildPhotoKey(containerCode string, movementID int64, filename string) string {
	ext := "jpg"
	if i := strings.LastIndex(filename, "."); i >= 0 && i < len(filename)-1 {
		ext = strings.ToLower(filename[i+1:])
	}
	safe := strings.NewReplacer("-", "", " ", "").Replace(containerCode)
	rand := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	return fmt.Sprintf("photos/%s/movement_%d/%s.%s", safe, movementID, rand, ext)
}
