package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	apperrors "github.com/johnquangdev/ifocus/errors"
	"github.com/johnquangdev/ifocus/pkg/config"
)

// MinIOSink stores rendered artifacts in a MinIO (or S3-compatible) bucket
type MinIOSink struct {
	client *minio.Client
	bucket string
}

// NewMinIOSink connects to MinIO and makes sure the bucket exists
func NewMinIOSink(ctx context.Context, cfg *config.StorageConfig) (*MinIOSink, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, apperrors.ErrStorageFailed("connect", err)
	}

	sink := &MinIOSink{client: minioClient, bucket: cfg.Bucket}
	if err := sink.ensureBucket(ctx); err != nil {
		return nil, apperrors.ErrStorageFailed("ensure bucket", err)
	}
	return sink, nil
}

func (m *MinIOSink) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Put uploads data under key and returns the object URL
func (m *MinIOSink) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	key = strings.TrimLeft(key, "/")
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", apperrors.ErrStorageFailed("put "+key, err)
	}
	return fmt.Sprintf("%s/%s/%s", m.client.EndpointURL().String(), m.bucket, key), nil
}

// PresignedURL returns a time-limited download link for key
func (m *MinIOSink) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, strings.TrimLeft(key, "/"), expiry, nil)
	if err != nil {
		return "", apperrors.ErrStorageFailed("presign "+key, err)
	}
	return u.String(), nil
}
