package services

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/codingclub/hackportal/internal/config"
	"github.com/google/uuid"
)

// BlobStore is the key-addressable store for uploaded files (resource files,
// team logos, avatars). Keys are scoped per entity so concurrent writes never
// collide on a key.
type BlobStore interface {
	// Save writes the blob under key and returns its public URL.
	Save(key string, src io.Reader) (string, error)
	// Delete removes the blob. Deleting a missing key is not an error.
	Delete(key string) error
	// URL returns the public URL a stored key is served under.
	URL(key string) string
}

// NewBlobKey generates a fresh blob key preserving the original extension.
func NewBlobKey(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return uuid.NewString() + ext
}

// LocalStore keeps blobs on the local filesystem and serves them under a
// static route.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(cfg *config.StorageConfig) (*LocalStore, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &LocalStore{dir: cfg.Dir, baseURL: strings.TrimSuffix(cfg.BaseURL, "/")}, nil
}

// Dir returns the directory blobs are written to.
func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Save(key string, src io.Reader) (string, error) {
	path, err := s.safePath(key)
	if err != nil {
		return "", err
	}

	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", err
	}
	return s.URL(key), nil
}

func (s *LocalStore) Delete(key string) error {
	path, err := s.safePath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *LocalStore) URL(key string) string {
	return s.baseURL + "/" + key
}

// safePath rejects keys that would escape the storage directory.
func (s *LocalStore) safePath(key string) (string, error) {
	if key == "" || strings.Contains(key, "/") || strings.Contains(key, "..") {
		return "", errors.New("invalid blob key")
	}
	return filepath.Join(s.dir, key), nil
}
