// Package storage persists uploaded recipe images.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SetLogLevel sets the log level for the storage package
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// Storage saves objects under a key and resolves their public URL.
type Storage interface {
	Save(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Config selects and configures a backend.
type Config struct {
	// Driver is "local" (default) or "s3"
	Driver string

	// Local backend
	MediaRoot string
	MediaURL  string

	// S3-compatible backend
	S3Region    string
	S3Bucket    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string
}

// New builds the backend named by cfg.Driver.
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "local":
		log.WithField("media_root", cfg.MediaRoot).Info("Using local media storage")
		return NewLocalStorage(cfg.MediaRoot, cfg.MediaURL), nil
	case "s3":
		log.WithFields(logrus.Fields{
			"bucket":   cfg.S3Bucket,
			"endpoint": cfg.S3Endpoint,
		}).Info("Using S3 media storage")
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s (supported: local, s3)", cfg.Driver)
	}
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
