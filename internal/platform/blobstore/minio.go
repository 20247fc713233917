package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

type MinioConfig struct {
	Endpoint    string
	AccessKey   string
	SecretKey   string
	Bucket      string
	UseSSL      bool
	LinkExpires time.Duration
}

// MinioStore keeps objects in a bucket and returns presigned download links.
type MinioStore struct {
	client  *minio.Client
	bucket  string
	expires time.Duration
	logger  *zap.Logger
}

func NewMinioStore(cfg MinioConfig, logger *zap.Logger) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	expires := cfg.LinkExpires
	if expires <= 0 || expires > 7*24*time.Hour {
		// S3 caps presigned URLs at seven days.
		expires = 7 * 24 * time.Hour
	}
	return &MinioStore{client: client, bucket: cfg.Bucket, expires: expires, logger: logger}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	s.logger.Info("Created bucket", zap.String("bucket", s.bucket))
	return nil
}

func (s *MinioStore) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}
	_, err = s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s/%s: %w", s.bucket, name, err)
	}

	link, err := s.client.PresignedGetObject(ctx, s.bucket, name, s.expires, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign object %s/%s: %w", s.bucket, name, err)
	}
	return link.String(), nil
}

func (s *MinioStore) Get(ctx context.Context, name string) ([]byte, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s/%s: %w", s.bucket, name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("read object %s/%s: %w", s.bucket, name, err)
	}
	return data, nil
}
