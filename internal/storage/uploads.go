// Package storage persists uploaded image files under a static directory.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
)

// PublicPrefix is the URL prefix under which stored files are served.
const PublicPrefix = "/static/uploads"

// Upload errors.
var (
	// ErrFileTooLarge indicates the upload exceeds the configured size cap.
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
	// ErrUnsupportedType indicates an extension outside the image allow-list.
	ErrUnsupportedType = errors.New("unsupported file type")
)

// allowedExtensions is the image extension allow-list.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Uploads writes image files into a directory served at PublicPrefix.
// Stored names are ULIDs (millisecond timestamp + random entropy), so
// concurrent uploads cannot collide.
type Uploads struct {
	dir     string
	maxSize int64
}

// NewUploads creates the upload directory if needed and returns a store.
func NewUploads(dir string, maxSize int64) (*Uploads, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Uploads{dir: dir, maxSize: maxSize}, nil
}

// Dir returns the directory files are stored in.
func (u *Uploads) Dir() string {
	return u.dir
}

// Store writes the payload to disk and returns the public path it will be
// served from. The original filename contributes only its extension; a
// missing extension defaults to .jpg.
func (u *Uploads) Store(originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".jpg"
	}
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedType
	}

	name := ulid.Make().String() + ext
	path := filepath.Join(u.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	// Copy one byte past the cap so oversize payloads are detectable.
	written, err := io.Copy(f, io.LimitReader(r, u.maxSize+1))
	closeErr := f.Close()

	switch {
	case err != nil:
		os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	case written > u.maxSize:
		os.Remove(path)
		return "", ErrFileTooLarge
	case closeErr != nil:
		os.Remove(path)
		return "", fmt.Errorf("close upload file: %w", closeErr)
	}

	return PublicPrefix + "/" + name, nil
}
