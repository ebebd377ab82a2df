package invoice

import (
	"fmt"
	"os"
	"path/filepath"
)

// Storage defines the interface for keeping the uploaded invoice images so
// they can be served back next to the extracted data.
type Storage interface {
	// Save saves an image and returns the path/filename
	Save(filename string, data []byte) (string, error)

	// Get retrieves an image by path
	Get(path string) ([]byte, error)

	// Delete removes an image
	Delete(path string) error
}

// LocalStorage implements the Storage interface using the local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new LocalStorage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	return &LocalStorage{basePath: basePath}, nil
}

// Save writes an invoice image to local storage
func (l *LocalStorage) Save(filename string, data []byte) (string, error) {
	path := filepath.Join(l.basePath, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}
	return filename, nil
}

// Get reads an invoice image from local storage
func (l *LocalStorage) Get(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(l.basePath, path))
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	return data, nil
}

// Delete removes an invoice image from local storage
func (l *LocalStorage) Delete(path string) error {
	if err := os.Remove(filepath.Join(l.basePath, path)); err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}
	return nil
}
