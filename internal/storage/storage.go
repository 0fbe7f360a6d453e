// Package storage defines the provider adapter used to persist uploaded assets.
// Swap implementations by changing STORAGE_DRIVER at startup; the MinIO driver works
// with any S3-compatible provider and the S3 driver talks to AWS directly.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fileupload/service/internal/logging"
)

// Resource categories detected on upload.
const (
	ResourceImage = "image"
	ResourceVideo = "video"
	ResourceRaw   = "raw"
)

// DefaultFolder prefixes every object key.
const DefaultFolder = "uploads"

// ErrNotFound is wrapped by provider errors for objects that do not exist.
var ErrNotFound = errors.New("object not found")

// Provider is the interface to the remote asset store.
type Provider interface {
	// Upload stores data under opts.PublicID within the configured folder.
	Upload(ctx context.Context, data []byte, opts UploadOptions) (*Asset, error)
	// Remove deletes a previously stored object.
	Remove(ctx context.Context, publicID string) error
	// GetMetadata fetches stored object metadata.
	GetMetadata(ctx context.Context, publicID string) (*Asset, error)
	// SignedURL returns a time-limited URL granting read access to the object.
	SignedURL(ctx context.Context, publicID string, ttl time.Duration) (string, error)
}

// UploadOptions carries the caller-supplied naming and context for an upload.
type UploadOptions struct {
	PublicID    string
	Filename    string
	ContentType string
	Context     map[string]string
}

// Asset describes a stored object.
type Asset struct {
	PublicID     string
	SecureURL    string
	ResourceType string
	Format       string
	ContentType  string
	Bytes        int64
	Width        *int
	Height       *int
	Duration     *float64
	CreatedAt    time.Time
	Context      map[string]string
}

// Error is returned by providers for failed remote calls.
// StatusCode is the provider's HTTP status, or 0 when none was received.
type Error struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("storage: %s (%s, status %d)", e.Message, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("storage: %s (status %d)", e.Message, e.StatusCode)
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus returns the status a caller should surface for err: the provider's
// status when err carries one, otherwise 500.
func HTTPStatus(err error) int {
	var se *Error
	if errors.As(err, &se) && se.StatusCode >= 400 && se.StatusCode <= 599 {
		return se.StatusCode
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// Driver names accepted by New.
const (
	DriverMinio = "minio"
	DriverS3    = "s3"
)

// Config holds the settings shared by every driver.
type Config struct {
	Driver     string
	Endpoint   string
	Region     string
	Bucket     string
	AccessKey  string
	SecretKey  string
	UseSSL     bool
	PublicBase string
	Folder     string
}

// New creates the provider selected by cfg.Driver.
func New(ctx context.Context, cfg Config, log logging.Logger) (Provider, error) {
	switch cfg.Driver {
	case DriverMinio, "":
		return NewMinioStorage(ctx, cfg, log)
	case DriverS3:
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}
