// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/fileupload/service/internal/storage"
	"github.com/fileupload/service/internal/validation"
)

const defaultTokenSecret = "change_me_in_production"

// Config holds all runtime configuration for the service.
type Config struct {
	Port   string
	AppEnv string

	// Remote asset provider. Bucket, access key and secret key are required.
	StorageDriver     string
	StorageEndpoint   string
	StorageRegion     string
	StorageBucket     string
	StorageAccessKey  string
	StorageSecretKey  string
	StorageUseSSL     bool
	StoragePublicBase string // browser-accessible base URL, e.g. "https://cdn.example.com/media"
	StorageFolder     string

	UploadMaxBytes int64
	UploadTmpDir   string

	FileTokenSecret string
	FileTokenTTL    time.Duration
}

// Load reads configuration from a .env file (if present) and environment variables.
// Values that fail to parse fall back to their defaults; call Validate before use.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading from environment")
	}

	return &Config{
		Port:   getEnv("PORT", "8080"),
		AppEnv: getEnv("APP_ENV", "development"),

		StorageDriver:     getEnv("STORAGE_DRIVER", storage.DriverMinio),
		StorageEndpoint:   getEnv("STORAGE_ENDPOINT", ""),
		StorageRegion:     getEnv("STORAGE_REGION", "us-east-1"),
		StorageBucket:     getEnv("STORAGE_BUCKET", ""),
		StorageAccessKey:  getEnv("STORAGE_ACCESS_KEY", ""),
		StorageSecretKey:  getEnv("STORAGE_SECRET_KEY", ""),
		StorageUseSSL:     getEnv("STORAGE_USE_SSL", "false") == "true",
		StoragePublicBase: getEnv("STORAGE_PUBLIC_BASE", ""),
		StorageFolder:     getEnv("STORAGE_FOLDER", storage.DefaultFolder),

		UploadMaxBytes: getInt64("UPLOAD_MAX_BYTES", validation.DefaultMaxSize),
		UploadTmpDir:   getEnv("UPLOAD_TMP_DIR", os.TempDir()),

		FileTokenSecret: getEnv("FILE_TOKEN_SECRET", defaultTokenSecret),
		FileTokenTTL:    getDuration("FILE_TOKEN_TTL", 30*24*time.Hour),
	}
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error

	required := []struct{ name, value string }{
		{"STORAGE_BUCKET", c.StorageBucket},
		{"STORAGE_ACCESS_KEY", c.StorageAccessKey},
		{"STORAGE_SECRET_KEY", c.StorageSecretKey},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, fmt.Errorf("%s is not defined", r.name))
		}
	}

	switch c.StorageDriver {
	case storage.DriverMinio:
		if c.StorageEndpoint == "" {
			errs = append(errs, errors.New("STORAGE_ENDPOINT is required for the minio driver"))
		}
	case storage.DriverS3:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER %q is not one of minio, s3", c.StorageDriver))
	}

	if c.UploadMaxBytes <= 0 {
		errs = append(errs, errors.New("UPLOAD_MAX_BYTES must be positive"))
	}
	if c.IsProduction() && c.FileTokenSecret == defaultTokenSecret {
		errs = append(errs, errors.New("FILE_TOKEN_SECRET must be set in production"))
	}

	return errors.Join(errs...)
}

// Storage returns the provider settings.
func (c *Config) Storage() storage.Config {
	return storage.Config{
		Driver:     c.StorageDriver,
		Endpoint:   c.StorageEndpoint,
		Region:     c.StorageRegion,
		Bucket:     c.StorageBucket,
		AccessKey:  c.StorageAccessKey,
		SecretKey:  c.StorageSecretKey,
		UseSSL:     c.StorageUseSSL,
		PublicBase: c.StoragePublicBase,
		Folder:     c.StorageFolder,
	}
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	v, err := strconv.ParseInt(getEnv(key, ""), 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}
