package utils

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Lucifer21-lab/synchro-ai-sub000/config"
)

// BlobStore uploads submission files and returns a hosted URL for them.
type BlobStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewBlobStore(cfg config.MinioConfig) (*BlobStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	return &BlobStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

// Upload stores data under a fresh object key and returns the hosted URL.
func (b *BlobStore) Upload(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	objectKey := fmt.Sprintf("submissions/%s%s", uuid.New().String(), ext)

	_, err := b.client.PutObject(ctx, b.bucket, objectKey,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", filename, err)
	}

	return b.publicURL + "/" + objectKey, nil
}
