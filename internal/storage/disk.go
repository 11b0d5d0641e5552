package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileStore abstracts where uploaded image files live so services can be
// tested without touching the filesystem.
type FileStore interface {
	// Save writes the file under a generated name and returns the public
	// URL path it will be served from.
	Save(originalName string, data []byte) (string, error)
	// Path resolves a stored file name to an absolute path, or an error if
	// the file does not exist.
	Path(filename string) (string, error)
	// Remove deletes the file behind a previously returned URL. Removing an
	// absent file is not an error.
	Remove(url string) error
}

// DiskStore stores uploads in a local directory and serves them under the
// /uploads URL prefix.
type DiskStore struct {
	dir string
}

// NewDiskStore creates a DiskStore rooted at dir.
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

// Dir returns the directory files are written to.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Save writes data under a UUID name that keeps the original extension.
func (s *DiskStore) Save(originalName string, data []byte) (string, error) {
	ext := filepath.Ext(originalName)
	filename := uuid.New().String() + ext

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory %s: %w", s.dir, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write upload %s: %w", filename, err)
	}
	return "/uploads/" + filename, nil
}

// Path resolves a stored file name to an absolute path.
func (s *DiskStore) Path(filename string) (string, error) {
	// Reject path traversal out of the upload directory.
	if filepath.Base(filename) != filename {
		return "", fmt.Errorf("invalid file name %q", filename)
	}
	p := filepath.Join(s.dir, filename)
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("failed to stat upload %s: %w", filename, err)
	}
	return filepath.Abs(p)
}

// Remove deletes the file behind a URL returned by Save.
func (s *DiskStore) Remove(url string) error {
	filename := strings.TrimPrefix(url, "/uploads/")
	if filename == "" || filepath.Base(filename) != filename {
		return fmt.Errorf("invalid upload URL %q", url)
	}
	if err := os.Remove(filepath.Join(s.dir, filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove upload %s: %w", filename, err)
	}
	return nil
}
