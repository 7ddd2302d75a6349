package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage writes objects below a root directory on disk.
type LocalStorage struct {
	root    string
	baseURL string
}

func NewLocalStorage(root, baseURL string) *LocalStorage {
	if root == "" {
		root = "media"
	}
	if baseURL == "" {
		baseURL = "/media/"
	}
	return &LocalStorage{root: root, baseURL: baseURL}
}

// Root is the directory served as media.
func (s *LocalStorage) Root() string {
	return s.root
}

// BaseURL is the URL prefix media keys are published under.
func (s *LocalStorage) BaseURL() string {
	return s.baseURL
}

func (s *LocalStorage) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

func (s *LocalStorage) Save(ctx context.Context, key string, data []byte, contentType string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create media dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write media file: %w", err)
	}
	log.WithFields(map[string]interface{}{"key": key, "bytes": len(data)}).Debug("Stored media file")
	return nil
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove media file: %w", err)
	}
	return nil
}

func (s *LocalStorage) URL(key string) string {
	if key == "" {
		return ""
	}
	return joinURL(s.baseURL, key)
}
