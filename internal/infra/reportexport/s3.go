package reportexport

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Exporter uploads rendered reports to an S3-compatible bucket.
type S3Exporter struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// NewS3Exporter constructs the exporter.
func NewS3Exporter(endpoint, accessKey, secretKey, bucket string, useSSL bool, logger *slog.Logger) (*S3Exporter, error) {
	client, err := minio.New(sanitizeEndpoint(endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       useSSL,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3Exporter{client: client, bucket: bucket, logger: logger.With("component", "reportexport.s3")}, nil
}

func (e *S3Exporter) ensureBucket(ctx context.Context) error {
	exists, err := e.client.BucketExists(ctx, e.bucket)
	if err == nil && exists {
		return nil
	}
	err = e.client.MakeBucket(ctx, e.bucket, minio.MakeBucketOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
		return err
	}
	return nil
}

// Export uploads body under key and returns the bucket-qualified location.
func (e *S3Exporter) Export(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	if err := e.ensureBucket(ctx); err != nil {
		return "", err
	}
	info, err := e.client.PutObject(ctx, e.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType:      contentType,
		DisableMultipart: true,
	})
	if err != nil {
		return "", err
	}
	e.logger.Info("report exported", "key", info.Key, "size", info.Size)
	return fmt.Sprintf("s3://%s/%s", e.bucket, info.Key), nil
}

func sanitizeEndpoint(endpoint string) string {
	clean := strings.TrimSpace(endpoint)
	clean = strings.TrimPrefix(clean, "https://")
	clean = strings.TrimPrefix(clean, "http://")
	return strings.TrimRight(clean, "/")
}
