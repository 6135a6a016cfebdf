package merge

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dusk-indust/srcmerge/internal/config"
)

const s3Scheme = "s3://"

// ParseS3URL splits s3://bucket/key into its parts.
func ParseS3URL(name string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(name, s3Scheme)
	if !ok {
		return "", "", fmt.Errorf("not an s3 url: %q", name)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	key = strings.TrimLeft(key, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 url needs a bucket and a key: %q", name)
	}
	return bucket, key, nil
}

// S3Writer uploads artifacts to one bucket of an S3-compatible store. The
// bucket is created on first use if it does not exist.
type S3Writer struct {
	client   *minio.Client
	bucket   string
	region   string
	initOnce sync.Once
	initErr  error
}

// NewS3Writer creates a client for cfg. No request is made until Write.
func NewS3Writer(cfg config.S3Config) (*S3Writer, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required (set SRCMERGE_S3_ENDPOINT or s3.endpoint)")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3Writer{client: client, bucket: bucket, region: region}, nil
}

func (w *S3Writer) ensureBucket(ctx context.Context) error {
	w.initOnce.Do(func() {
		exists, err := w.client.BucketExists(ctx, w.bucket)
		if err != nil {
			w.initErr = err
			return
		}
		if exists {
			return
		}
		w.initErr = w.client.MakeBucket(ctx, w.bucket, minio.MakeBucketOptions{Region: w.region})
	})
	return w.initErr
}

// Write uploads data. name is either an s3:// URL for the writer's bucket or
// a bare object key.
func (w *S3Writer) Write(ctx context.Context, name string, data []byte) error {
	key := strings.TrimLeft(name, "/")
	if strings.HasPrefix(name, s3Scheme) {
		bucket, k, err := ParseS3URL(name)
		if err != nil {
			return err
		}
		if bucket != w.bucket {
			return fmt.Errorf("s3 writer for bucket %q cannot write to %q", w.bucket, bucket)
		}
		key = k
	}
	if key == "" {
		return fmt.Errorf("s3 object key is required")
	}

	if err := w.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	_, err := w.client.PutObject(ctx, w.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType(key),
	})
	if err != nil {
		return fmt.Errorf("upload s3://%s/%s: %w", w.bucket, key, err)
	}
	return nil
}

func contentType(key string) string {
	switch {
	case strings.HasSuffix(key, ".js"), strings.HasSuffix(key, ".mjs"):
		return "text/javascript; charset=utf-8"
	case strings.HasSuffix(key, ".css"):
		return "text/css; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}
