package files

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Ensure DiskStore implements Store
var _ Store = (*DiskStore)(nil)

// DiskStore writes attachments to a local directory and serves them under
// a base URL. Swap in an object-store implementation behind the Store
// interface for bucket-backed deployments.
type DiskStore struct {
	dir     string
	baseURL string
}

// NewDiskStore creates a disk-backed attachment store rooted at dir.
// Saved files are addressed as baseURL/<folder>/<name>.
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &DiskStore{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Save writes the upload to disk and returns its URL.
// Names are prefixed with a timestamp and whitespace is snake-cased, so
// repeated uploads of the same file never collide.
func (s *DiskStore) Save(ctx context.Context, folder string, upload Upload) (string, error) {
	if upload.Content == nil {
		return "", fmt.Errorf("no file provided")
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitizeFilename(upload.Filename))
	rel := name
	if folder != "" {
		rel = filepath.Join(folder, name)
		if err := os.MkdirAll(filepath.Join(s.dir, folder), 0755); err != nil {
			return "", fmt.Errorf("failed to create folder: %w", err)
		}
	}

	dst, err := os.Create(filepath.Join(s.dir, rel))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, upload.Content); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return s.baseURL + "/" + filepath.ToSlash(rel), nil
}

// sanitizeFilename snake-cases whitespace and strips any path components.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "file"
	}
	return strings.Join(strings.Fields(name), "_")
}
