package files

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDiskStoreSave(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir, "http://localhost:8080/uploads/")
	if err != nil {
		t.Fatalf("NewDiskStore failed: %v", err)
	}
	ctx := context.Background()

	t.Run("saves file and returns URL", func(t *testing.T) {
		url, err := store.Save(ctx, "bills", Upload{
			Filename:    "march invoice.pdf",
			ContentType: "application/pdf",
			Content:     strings.NewReader("pdf-bytes"),
		})
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		if !strings.HasPrefix(url, "http://localhost:8080/uploads/bills/") {
			t.Errorf("unexpected URL prefix: %s", url)
		}
		if !strings.HasSuffix(url, "-march_invoice.pdf") {
			t.Errorf("expected snake-cased timestamped name, got %s", url)
		}

		rel := strings.TrimPrefix(url, "http://localhost:8080/uploads/")
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil {
			t.Fatalf("reading saved file: %v", err)
		}
		if string(data) != "pdf-bytes" {
			t.Errorf("unexpected content: %q", data)
		}
	})

	t.Run("rejects nil content", func(t *testing.T) {
		if _, err := store.Save(ctx, "bills", Upload{Filename: "x.pdf"}); err == nil {
			t.Error("expected error for nil content")
		}
	})

	t.Run("strips path components from filename", func(t *testing.T) {
		url, err := store.Save(ctx, "", Upload{
			Filename: "../../etc/passwd",
			Content:  strings.NewReader("nope"),
		})
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if strings.Contains(url, "..") {
			t.Errorf("path components leaked into URL: %s", url)
		}
	})
}
