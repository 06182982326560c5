package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"yardgate-backend/config"
)

// S3Storage uploads photos to an S3-compatible bucket (Cloudflare R2 in
// production).
type S3Storage struct {
	client        *minio.Client
	bucket        string
	endpoint      string
	useSSL        bool
	publicBaseURL string
}

// NewS3Storage validates the configuration and builds the client. No network
// calls happen here.
func NewS3Storage(cfg *config.StorageConfig) (*S3Storage, error) {
	if cfg.S3Bucket == "" || cfg.S3Endpoint == "" {
		return nil, fmt.Errorf("s3 storage requires s3_bucket and s3_endpoint")
	}
	if cfg.S3AccessKey == "" || cfg.S3SecretKey == "" {
		return nil, fmt.Errorf("s3 storage requires s3_access_key and s3_secret_key")
	}

	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	return &S3Storage{
		client:        client,
		bucket:        cfg.S3Bucket,
		endpoint:      cfg.S3Endpoint,
		useSSL:        cfg.S3UseSSL,
		publicBaseURL: strings.TrimRight(cfg.S3PublicBaseURL, "/"),
	}, nil
}

// Store uploads the object and returns a browsable URL: the public base URL
// when configured (R2.dev / custom domain), otherwise endpoint/bucket/key.
func (s *S3Storage) Store(ctx context.Context, r io.Reader, size int64, key, contentType string) (string, error) {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := s.client.PutObject(ctx, s.bucket, key, r, size, opts); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key, nil
	}

	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, key), nil
}
