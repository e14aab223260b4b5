// Package storage puts uploaded attachments into an object store and hands back
// public URLs for them.
package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"campus_desk_backend/internal/config"

	"go.uber.org/zap"
)

// File is an upload waiting to be stored.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Ext returns the lower-cased extension of the original file name, inferring one from
// the content type when the name has none.
func (f *File) Ext() string {
	ext := strings.ToLower(filepath.Ext(f.Name))
	if ext != "" {
		return ext
	}
	switch {
	case strings.HasPrefix(f.ContentType, "image/jpeg"):
		return ".jpg"
	case strings.HasPrefix(f.ContentType, "image/png"):
		return ".png"
	case strings.HasPrefix(f.ContentType, "image/gif"):
		return ".gif"
	case strings.HasPrefix(f.ContentType, "application/pdf"):
		return ".pdf"
	}
	return ""
}

// FromFileHeader opens a multipart upload. The caller closes the returned closer.
func FromFileHeader(fh *multipart.FileHeader) (*File, io.Closer, error) {
	if fh == nil {
		return nil, nil, fmt.Errorf("fileHeader cannot be nil")
	}
	src, err := fh.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	return &File{
		Name:        filepath.Base(fh.Filename),
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Content:     src,
	}, src, nil
}

// ObjectStore is an S3-style bucket/key store.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, key string, file *File) error
	PublicURL(bucket, key string) string
	Delete(ctx context.Context, bucket, key string) error
}

// NewObjectStore builds the store selected by STORAGE_DRIVER.
func NewObjectStore(cfg *config.Config, logger *zap.Logger) (ObjectStore, error) {
	switch cfg.StorageDriver {
	case "s3":
		return NewS3Store(context.Background(), S3Options{
			Region:          cfg.S3Region,
			EndpointURL:     cfg.S3EndpointURL,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			PublicBaseURL:   cfg.StoragePublicBaseURL,
			Buckets:         []string{cfg.ComplaintBucket, cfg.LostFoundBucket},
		}, logger)
	default:
		return NewLocalStore(cfg.StorageLocalPath, cfg.StoragePublicBaseURL, logger)
	}
}

func cleanKey(key string) (string, error) {
	clean := filepath.ToSlash(filepath.Clean(key))
	if key == "" || strings.HasPrefix(clean, "..") || strings.Contains(clean, "/../") || strings.HasPrefix(clean, "/") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return clean, nil
}
