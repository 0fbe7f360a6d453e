package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/fileupload/service/internal/logging"
)

// MinioStorage implements Provider using a MinIO (or any S3-compatible) backend.
type MinioStorage struct {
	client     *minio.Client
	bucket     string
	folder     string
	publicBase string
}

// NewMinioStorage creates a MinIO client, ensures the bucket exists with a public-read
// policy, and returns a ready-to-use MinioStorage.
func NewMinioStorage(ctx context.Context, cfg Config, log logging.Logger) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", mapMinioError(err))
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", cfg.Bucket, mapMinioError(err))
		}
		log.Info(ctx, "storage: created bucket", "bucket", cfg.Bucket, "region", cfg.Region)
	}

	if err := client.SetBucketPolicy(ctx, cfg.Bucket, publicReadPolicy(cfg.Bucket, cfg.Folder)); err != nil {
		return nil, fmt.Errorf("set bucket policy: %w", mapMinioError(err))
	}

	return newMinioStorage(client, cfg), nil
}

func newMinioStorage(client *minio.Client, cfg Config) *MinioStorage {
	publicBase := cfg.PublicBase
	if publicBase == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicBase = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}
	return &MinioStorage{
		client:     client,
		bucket:     cfg.Bucket,
		folder:     cfg.Folder,
		publicBase: strings.TrimRight(publicBase, "/"),
	}
}

// Upload streams data to MinIO under the folder-qualified public id.
func (s *MinioStorage) Upload(ctx context.Context, data []byte, opts UploadOptions) (*Asset, error) {
	key := objectKey(s.folder, opts)
	asset, meta := buildAsset(key, s.PublicURL(key), int64(len(data)), data, opts)

	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  opts.ContentType,
		UserMetadata: meta,
	})
	if err != nil {
		return nil, fmt.Errorf("put object %q: %w", key, mapMinioError(err))
	}

	asset.Bytes = info.Size
	asset.CreatedAt = time.Now().UTC()
	if !info.LastModified.IsZero() {
		asset.CreatedAt = info.LastModified
	}
	return asset, nil
}

// Remove deletes the object at publicID from the bucket.
func (s *MinioStorage) Remove(ctx context.Context, publicID string) error {
	if _, err := s.client.StatObject(ctx, s.bucket, publicID, minio.StatObjectOptions{}); err != nil {
		return fmt.Errorf("stat object %q: %w", publicID, mapMinioError(err))
	}
	if err := s.client.RemoveObject(ctx, s.bucket, publicID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %q: %w", publicID, mapMinioError(err))
	}
	return nil
}

// GetMetadata returns the stored size, type and upload context of publicID.
func (s *MinioStorage) GetMetadata(ctx context.Context, publicID string) (*Asset, error) {
	info, err := s.client.StatObject(ctx, s.bucket, publicID, minio.StatObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("stat object %q: %w", publicID, mapMinioError(err))
	}

	a := &Asset{
		PublicID:    publicID,
		SecureURL:   s.PublicURL(publicID),
		ContentType: info.ContentType,
		Bytes:       info.Size,
		CreatedAt:   info.LastModified,
	}
	applyMetadata(a, info.UserMetadata)
	return a, nil
}

// SignedURL returns a presigned GET URL for publicID valid for ttl.
func (s *MinioStorage) SignedURL(ctx context.Context, publicID string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, publicID, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("presign object %q: %w", publicID, mapMinioError(err))
	}
	return u.String(), nil
}

// PublicURL returns the browser-accessible URL for the given key.
func (s *MinioStorage) PublicURL(key string) string {
	return s.publicBase + "/" + key
}

// mapMinioError converts a minio-go error into *Error carrying the HTTP status.
func mapMinioError(err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.StatusCode == 0 && resp.Code == "" {
		return &Error{Message: err.Error(), Err: err}
	}

	se := &Error{StatusCode: resp.StatusCode, Code: resp.Code, Message: resp.Message, Err: err}
	if se.Message == "" {
		se.Message = http.StatusText(resp.StatusCode)
	}
	if resp.StatusCode == http.StatusNotFound || resp.Code == "NoSuchKey" {
		se.Err = errors.Join(ErrNotFound, err)
	}
	return se
}

// publicReadPolicy returns an S3 bucket policy JSON that allows anonymous GET on
// objects under folder.
func publicReadPolicy(bucket, folder string) string {
	resource := fmt.Sprintf("arn:aws:s3:::%s/*", bucket)
	if folder != "" {
		resource = fmt.Sprintf("arn:aws:s3:::%s/%s/*", bucket, folder)
	}
	policy := map[string]interface{}{
		"Version": "2012-10-17",
		"Statement": []map[string]interface{}{
			{
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    "s3:GetObject",
				"Resource":  resource,
			},
		},
	}
	b, _ := json.Marshal(policy)
	return string(b)
}
