package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"dwelling/internal/app/policies"
)

var (
	ErrNotConfigured = errors.New("s3: image store is not configured")
	ErrBodyRequired  = errors.New("s3: body is required")
	ErrKeyRequired   = errors.New("s3: object key is required")
)

type Config struct {
	Endpoint      string
	UseSSL        bool
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
}

// ImageStore keeps listing images in an S3-compatible bucket. The bucket is
// created on first upload and made publicly readable so the returned URL can
// be used directly as an image source.
type ImageStore struct {
	bucket        string
	publicBaseURL string
	client        *minio.Client
	logger        *slog.Logger

	bucketOnce sync.Once
	bucketErr  error
}

func NewImageStore(cfg Config, logger *slog.Logger) (*ImageStore, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}

	client, err := minio.New(hostOf(endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(cfg.AccessKey), strings.TrimSpace(cfg.SecretKey), ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}

	base := strings.TrimSpace(cfg.PublicBaseURL)
	if base == "" {
		base = endpoint
	}
	return &ImageStore{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(base, "/"),
		client:        client,
		logger:        logger,
	}, nil
}

// Upload streams body to the bucket. A negative size makes minio buffer
// the upload in multipart chunks.
func (s *ImageStore) Upload(ctx context.Context, objectKey string, body io.Reader, size int64, contentType string) (string, error) {
	if body == nil {
		return "", ErrBodyRequired
	}
	key := strings.Trim(strings.TrimSpace(objectKey), "/")
	if key == "" {
		return "", ErrKeyRequired
	}
	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if size <= 0 {
		size = -1
	}

	if _, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return "", fmt.Errorf("s3: put object: %w", err)
	}
	publicURL := s.objectURL(key)
	if s.logger != nil {
		s.logger.Info("s3 upload completed", "bucket", s.bucket, "key", key, "url", publicURL)
	}
	return publicURL, nil
}

func (s *ImageStore) ensureBucket(ctx context.Context) error {
	s.bucketOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.bucketErr = fmt.Errorf("s3: check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			s.bucketErr = fmt.Errorf("s3: create bucket: %w", err)
			return
		}
		policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, s.bucket)
		if err := s.client.SetBucketPolicy(ctx, s.bucket, policy); err != nil {
			s.bucketErr = fmt.Errorf("s3: set bucket policy: %w", err)
		}
	})
	return s.bucketErr
}

func (s *ImageStore) objectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, strings.TrimLeft(key, "/"))
}

func hostOf(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

// Unavailable is wired when no endpoint is configured.
type Unavailable struct{}

func (Unavailable) Upload(context.Context, string, io.Reader, int64, string) (string, error) {
	return "", ErrNotConfigured
}

var (
	_ policies.ImageStore = (*ImageStore)(nil)
	_ policies.ImageStore = Unavailable{}
)
