// Package storage persists uploaded donation photos.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ImageStore saves an encoded image and returns the path or URL clients use
// to fetch it. Relative paths are made absolute by the HTTP layer.
type ImageStore interface {
	Save(ctx context.Context, data []byte, ext, contentType string) (string, error)
}

// LocalStore writes images into a directory that the router serves under
// URLPrefix.
type LocalStore struct {
	Dir       string
	URLPrefix string
}

func NewLocalStore(dir, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &LocalStore{Dir: dir, URLPrefix: urlPrefix}, nil
}

func (s *LocalStore) Save(ctx context.Context, data []byte, ext, contentType string) (string, error) {
	name := newFileName(ext)
	if err := os.WriteFile(filepath.Join(s.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}
	return s.URLPrefix + "/" + name, nil
}

func newFileName(ext string) string {
	return fmt.Sprintf("%d-%s%s", time.Now().Unix(), uuid.New().String(), ext)
}
