package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig configures the primary S3-compatible backend.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioStore writes to any S3-compatible object store.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore returns nil when the backend is unconfigured so the chain
// can skip it.
func NewMinioStore(cfg MinioConfig) (*MinioStore, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, nil
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

func (s *MinioStore) Put(ctx context.Context, pathname string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, pathname, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("minio put %q: %w", pathname, err)
	}
	return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL(), s.bucket, pathname), nil
}
