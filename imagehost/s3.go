package imagehost

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config locates an S3-compatible bucket.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the base under which stored objects are reachable.
	PublicURL string
}

// S3 uploads images to an S3-compatible bucket.
type S3 struct {
	client    *minio.Client
	bucket    string
	publicURL string
	maxWidth  int
}

// NewS3 connects to the bucket described by cfg.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	ok, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !ok {
		return nil, fmt.Errorf("bucket %s does not exist", cfg.Bucket)
	}
	return &S3{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicBase(cfg),
		maxWidth:  MaxWidth,
	}, nil
}

// Upload processes r and stores it as a new object.
func (s *S3) Upload(ctx context.Context, filename string, r io.Reader) (Result, error) {
	data, err := Process(r, s.maxWidth)
	if err != nil {
		return Result{}, err
	}
	key := objectKey(filename)
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  "image/jpeg",
		CacheControl: "public, max-age=31536000, immutable",
	})
	if err != nil {
		return Result{}, fmt.Errorf("put object %s: %w", key, err)
	}
	return Result{Success: true, URL: s.publicURL + key}, nil
}

func objectKey(filename string) string {
	return "uploads/" + baseName(filename) + "-" + uuid.NewString()[:8] + ".jpg"
}

// publicBase returns the URL prefix for objects, defaulting to path-style
// addressing on the endpoint.
func publicBase(cfg S3Config) string {
	base := strings.TrimSpace(cfg.PublicURL)
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = scheme + "://" + cfg.Endpoint + "/" + cfg.Bucket
	}
	return strings.TrimRight(base, "/") + "/"
}
