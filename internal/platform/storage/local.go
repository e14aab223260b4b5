package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// LocalStore keeps objects on disk under <root>/<bucket>/<key>. Used in development
// where the files are served statically from the public base URL.
type LocalStore struct {
	root    string
	baseURL string
	logger  *zap.Logger
}

var _ ObjectStore = (*LocalStore)(nil)

// NewLocalStore creates a LocalStore, making root if needed.
func NewLocalStore(root, baseURL string, logger *zap.Logger) (*LocalStore, error) {
	if root == "" {
		return nil, fmt.Errorf("storage path cannot be empty")
	}
	if err := os.MkdirAll(root, os.ModePerm); err != nil {
		logger.Error("Failed to create storage path directory", zap.String("path", root), zap.Error(err))
		return nil, fmt.Errorf("failed to create storage path %s: %w", root, err)
	}
	logger.Info("Local object store initialized", zap.String("root", root))
	return &LocalStore{root: root, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}, nil
}

func (s *LocalStore) path(bucket, key string) (string, error) {
	cleanBucket, err := cleanKey(bucket)
	if err != nil || strings.Contains(cleanBucket, "/") {
		return "", fmt.Errorf("invalid bucket %q", bucket)
	}
	cleanK, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, cleanBucket, filepath.FromSlash(cleanK)), nil
}

func (s *LocalStore) Upload(ctx context.Context, bucket, key string, file *File) error {
	if file == nil || file.Content == nil {
		return fmt.Errorf("file cannot be nil")
	}
	dest, err := s.path(bucket, key)
	if err != nil {
		s.logger.Error("Rejected object key", zap.String("bucket", bucket), zap.String("key", key), zap.Error(err))
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dest, err)
	}

	dst, err := os.Create(dest)
	if err != nil {
		s.logger.Error("Failed to create destination file", zap.String("path", dest), zap.Error(err))
		return fmt.Errorf("failed to create file %s: %w", dest, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file.Content); err != nil {
		s.logger.Error("Failed to copy upload to destination", zap.String("path", dest), zap.Error(err))
		os.Remove(dest)
		return fmt.Errorf("failed to save file: %w", err)
	}
	s.logger.Debug("Object stored", zap.String("path", dest))
	return nil
}

func (s *LocalStore) PublicURL(bucket, key string) string {
	return s.baseURL + "/" + url.PathEscape(bucket) + "/" + escapeKey(key)
}

// Delete removes the object. Missing objects are not an error.
func (s *LocalStore) Delete(ctx context.Context, bucket, key string) error {
	full, err := s.path(bucket, key)
	if err != nil {
		s.logger.Warn("Attempt to delete object with invalid key", zap.String("key", key))
		return err
	}
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("Attempt to delete non-existent object", zap.String("path", full))
			return nil
		}
		s.logger.Error("Failed to delete object", zap.String("path", full), zap.Error(err))
		return fmt.Errorf("failed to delete file %s: %w", full, err)
	}
	return nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
