package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Storage implements Provider for AWS S3 using the v2 SDK.
type S3Storage struct {
	client     *s3.Client
	presign    *s3.PresignClient
	bucket     string
	folder     string
	publicBase string
}

// NewS3Storage creates a new S3 storage instance. A non-empty cfg.Endpoint
// overrides the AWS endpoint and switches to path-style addressing.
func NewS3Storage(ctx context.Context, cfg Config) (*S3Storage, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicBase := cfg.PublicBase
	if publicBase == "" {
		if cfg.Endpoint != "" {
			publicBase = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			publicBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	return &S3Storage{
		client:     client,
		presign:    s3.NewPresignClient(client),
		bucket:     cfg.Bucket,
		folder:     cfg.Folder,
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

// Upload stores data in S3 under the folder-qualified public id.
func (s *S3Storage) Upload(ctx context.Context, data []byte, opts UploadOptions) (*Asset, error) {
	key := objectKey(s.folder, opts)
	asset, meta := buildAsset(key, s.PublicURL(key), int64(len(data)), data, opts)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(opts.ContentType),
		Metadata:      meta,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", mapS3Error(err))
	}

	asset.CreatedAt = time.Now().UTC()
	return asset, nil
}

// Remove deletes publicID from S3.
func (s *S3Storage) Remove(ctx context.Context, publicID string) error {
	if _, err := s.GetMetadata(ctx, publicID); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", mapS3Error(err))
	}
	return nil
}

// GetMetadata issues a HEAD request for publicID.
func (s *S3Storage) GetMetadata(ctx context.Context, publicID string) (*Asset, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to head S3 object: %w", mapS3Error(err))
	}

	a := &Asset{
		PublicID:    publicID,
		SecureURL:   s.PublicURL(publicID),
		ContentType: aws.ToString(out.ContentType),
		Bytes:       aws.ToInt64(out.ContentLength),
		CreatedAt:   aws.ToTime(out.LastModified),
	}
	applyMetadata(a, out.Metadata)
	return a, nil
}

// SignedURL presigns a GET for publicID valid for ttl.
func (s *S3Storage) SignedURL(ctx context.Context, publicID string, ttl time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign S3 object: %w", mapS3Error(err))
	}
	return req.URL, nil
}

// PublicURL returns the browser-accessible URL for the given key.
func (s *S3Storage) PublicURL(key string) string {
	return s.publicBase + "/" + key
}

// mapS3Error extracts the HTTP status and service error code from an SDK error.
func mapS3Error(err error) error {
	se := &Error{Message: err.Error(), Err: err}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		se.StatusCode = respErr.HTTPStatusCode()
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		se.Code = apiErr.ErrorCode()
		if msg := apiErr.ErrorMessage(); msg != "" {
			se.Message = msg
		}
	}

	if se.StatusCode == http.StatusNotFound || se.Code == "NoSuchKey" || se.Code == "NotFound" {
		se.Err = errors.Join(ErrNotFound, err)
	}
	return se
}
