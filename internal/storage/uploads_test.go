package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestUploads(t *testing.T, maxSize int64) *Uploads {
	t.Helper()
	u, err := NewUploads(t.TempDir(), maxSize)
	if err != nil {
		t.Fatalf("NewUploads failed: %v", err)
	}
	return u
}

func TestStore_WritesFileAndReturnsPublicPath(t *testing.T) {
	t.Parallel()

	u := newTestUploads(t, 1024)

	path, err := u.Store("photo.png", strings.NewReader("fake png bytes"))
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	if !strings.HasPrefix(path, PublicPrefix+"/") {
		t.Errorf("public path should start with %s/, got %s", PublicPrefix, path)
	}
	if !strings.HasSuffix(path, ".png") {
		t.Errorf("public path should keep the extension, got %s", path)
	}

	name := strings.TrimPrefix(path, PublicPrefix+"/")
	data, err := os.ReadFile(filepath.Join(u.Dir(), name))
	if err != nil {
		t.Fatalf("stored file not readable: %v", err)
	}
	if string(data) != "fake png bytes" {
		t.Errorf("stored content mismatch: %q", data)
	}
}

func TestStore_DefaultsToJPG(t *testing.T) {
	t.Parallel()

	u := newTestUploads(t, 1024)

	path, err := u.Store("no-extension", strings.NewReader("bytes"))
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if !strings.HasSuffix(path, ".jpg") {
		t.Errorf("missing extension should default to .jpg, got %s", path)
	}
}

func TestStore_UniqueNames(t *testing.T) {
	t.Parallel()

	u := newTestUploads(t, 1024)

	path1, err := u.Store("a.jpg", strings.NewReader("one"))
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	path2, err := u.Store("a.jpg", strings.NewReader("two"))
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	if path1 == path2 {
		t.Error("same original name should produce distinct stored names")
	}
}

func TestStore_RejectsUnsupportedExtension(t *testing.T) {
	t.Parallel()

	u := newTestUploads(t, 1024)

	tests := []string{"script.exe", "page.html", "archive.zip", "image.svg"}
	for _, name := range tests {
		name := name
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if _, err := u.Store(name, strings.NewReader("x")); !errors.Is(err, ErrUnsupportedType) {
				t.Errorf("expected ErrUnsupportedType for %q, got %v", name, err)
			}
		})
	}
}

func TestStore_RejectsOversizedUpload(t *testing.T) {
	t.Parallel()

	u := newTestUploads(t, 10)

	_, err := u.Store("big.jpg", strings.NewReader(strings.Repeat("x", 11)))
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}

	// The partial file must not be left behind.
	entries, err := os.ReadDir(u.Dir())
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no leftover files, found %d", len(entries))
	}
}

func TestStore_AcceptsExactCapSize(t *testing.T) {
	t.Parallel()

	u := newTestUploads(t, 10)

	if _, err := u.Store("ok.jpg", strings.NewReader(strings.Repeat("x", 10))); err != nil {
		t.Fatalf("payload at exactly the cap should succeed, got %v", err)
	}
}
