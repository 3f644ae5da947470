package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ocrfields/extract-json-service/internal/models"
)

// ErrDisabled is returned by New when storage is not enabled
var ErrDisabled = errors.New("image storage disabled")

// Archive stores submitted images in a MinIO/S3 bucket
type Archive struct {
	client *minio.Client
	bucket string
	now    func() time.Time
}

// New connects to MinIO and verifies the bucket exists
func New(ctx context.Context, cfg models.StorageConfig) (*Archive, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("storage enabled without endpoint")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	// Verify bucket exists
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", cfg.Bucket)
	}

	return &Archive{client: client, bucket: cfg.Bucket, now: time.Now}, nil
}

// Bucket returns the bucket images are written to
func (a *Archive) Bucket() string {
	return a.bucket
}

// ObjectName builds the object key for an image: YYYY/MM/{id}{ext}
func ObjectName(at time.Time, id uuid.UUID, contentType string) string {
	return fmt.Sprintf("%d/%02d/%s%s", at.Year(), at.Month(), id, GetFileExtension(contentType))
}

// UploadImage stores image under a key derived from id and returns the
// full "bucket/key" path
func (a *Archive) UploadImage(ctx context.Context, id uuid.UUID, image []byte) (string, error) {
	contentType := http.DetectContentType(image)
	objectName := ObjectName(a.now(), id, contentType)

	_, err := a.client.PutObject(ctx, a.bucket, objectName, bytes.NewReader(image), int64(len(image)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return fmt.Sprintf("%s/%s", a.bucket, objectName), nil
}

// Available reports whether the bucket is reachable
func (a *Archive) Available(ctx context.Context) error {
	ok, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", a.bucket)
	}
	return nil
}

// GetFileExtension extracts file extension from content type
func GetFileExtension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	case "application/pdf":
		return ".pdf"
	default:
		return ".bin"
	}
}
