// Package images validates, stores and summarises uploaded profile pictures.
package images

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotFound is returned when no image is stored under an id.
var ErrNotFound = errors.New("image not found")

// Storage keeps one image file per id below a directory.
// Safe for concurrent use.
type Storage struct {
	basePath string
	mu       sync.RWMutex
}

// NewStorage creates {basePath}/{subdir} if needed and stores images there.
func NewStorage(basePath, subdir string) (*Storage, error) {
	if basePath == "" {
		return nil, errors.New("base path cannot be empty")
	}
	if subdir == "" {
		return nil, errors.New("subdirectory cannot be empty")
	}

	storagePath := filepath.Join(basePath, subdir)
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return nil, fmt.Errorf("create %s directory: %w", subdir, err)
	}
	return &Storage{basePath: storagePath}, nil
}

// Save writes data for id, replacing any previous image.
// The file is written to a temp name first so readers never see a partial image.
func (s *Storage) Save(id string, data []byte) error {
	if err := validID(id); err != nil {
		return err
	}
	if len(data) == 0 {
		return ErrEmptyImage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(id)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write image file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace image file: %w", err)
	}
	return nil
}

// Get returns the stored bytes for id, or ErrNotFound.
func (s *Storage) Get(id string) ([]byte, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.Path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read image file: %w", err)
	}
	return data, nil
}

// Exists reports whether an image is stored for id.
func (s *Storage) Exists(id string) bool {
	if validID(id) != nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.Path(id))
	return err == nil
}

// Delete removes the image for id. Missing images are not an error.
func (s *Storage) Delete(id string) error {
	if err := validID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete image file: %w", err)
	}
	return nil
}

// Path returns the file path for id.
func (s *Storage) Path(id string) string {
	return filepath.Join(s.basePath, id+".img")
}

// ContentHash is the hex SHA-256 of data, used for cache-busting URLs.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func validID(id string) error {
	if id == "" {
		return errors.New("id cannot be empty")
	}
	if id != filepath.Base(id) || id == "." || id == ".." {
		return fmt.Errorf("invalid image id %q", id)
	}
	return nil
}
