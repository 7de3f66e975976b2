// Package files stores uploaded attachments and hands back retrievable
// URLs for them.
package files

import (
	"context"
	"io"
)

// Upload is an attachment payload handed to a Store.
type Upload struct {
	// Filename is the original client-side file name.
	Filename string

	// ContentType is the declared MIME type.
	ContentType string

	// Content is the file body. The store drains it fully before returning.
	Content io.Reader
}

// Store accepts a binary payload and returns a retrievable URL for it.
// A Bill or Payment row is only persisted after Save returns, so a record
// never references an attachment that failed to upload.
type Store interface {
	Save(ctx context.Context, folder string, upload Upload) (string, error)
}
