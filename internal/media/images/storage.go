// Package images provides processing and storage for uploaded tool media.
package images

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Storage manages media filesystem operations.
// Thread-safe for concurrent operations.
// Used for tool logos and screenshots.
type Storage struct {
	basePath string
	mu       sync.RWMutex // Protects file operations
}

// NewStorage creates a new Storage instance.
// basePath should be the media directory (e.g., ~/Tooldex/data/media).
// The directory is created if it doesn't exist.
func NewStorage(basePath string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}

	return &Storage{
		basePath: basePath,
	}, nil
}

// Save stores media data under the given filename.
// The filename should include the extension (e.g., "media-abc123.png").
func (s *Storage) Save(filename string, data []byte) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	if len(data) == 0 {
		return fmt.Errorf("media data cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(filename)

	// Write file with appropriate permissions.
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write media file: %w", err)
	}

	return nil
}

// Get retrieves media data by filename.
func (s *Storage) Get(filename string) ([]byte, error) {
	if filename == "" {
		return nil, fmt.Errorf("filename cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.Path(filename)

	data, err := os.ReadFile(path) //#nosec G304 -- Path is scoped to the media directory
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("media not found for %s: %w", filename, err)
		}
		return nil, fmt.Errorf("failed to read media file: %w", err)
	}

	return data, nil
}

// Exists checks if a media file exists.
func (s *Storage) Exists(filename string) bool {
	if filename == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.Path(filename)
	_, err := os.Stat(path)
	return err == nil
}

// Delete removes a media file.
func (s *Storage) Delete(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(filename)

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			// Already deleted, not an error.
			return nil
		}
		return fmt.Errorf("failed to delete media file: %w", err)
	}

	return nil
}

// Hash computes SHA256 hash of a media file.
// Returns hex-encoded string for ETag/cache validation.
func (s *Storage) Hash(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	data, err := s.Get(filename)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}

// Path returns the full filesystem path for a media file.
// Any directory components in the filename are stripped so stored
// files always land directly under the media directory.
func (s *Storage) Path(filename string) string {
	return filepath.Join(s.basePath, filepath.Base(filename))
}
