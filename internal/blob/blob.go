// Package blob is the binary attachment boundary. Attachments are stored
// under the identity of the expense record that owns them.
package blob

import (
	"context"
	"errors"
	"io"
)

var (
	// Upload error taxonomy.
	ErrUnauthorized = errors.New("blob upload unauthorized")
	ErrCanceled     = errors.New("blob upload canceled")
	ErrUnknown      = errors.New("blob upload failed")

	ErrNotFound = errors.New("blob not found")
)

// ProgressFunc reports upload progress. total is -1 when unknown.
type ProgressFunc func(written, total int64)

// Store is the blob store port. Implementations wrap a managed backend;
// timeout and retry behaviour is the backend client's concern, and an
// upload in flight cannot be aborted once issued.
type Store interface {
	// Upload stores the blob under key, reporting progress as bytes
	// are written. Failures map onto ErrUnauthorized, ErrCanceled or
	// ErrUnknown.
	Upload(ctx context.Context, key string, r io.Reader, size int64, progress ProgressFunc) error

	// URL returns a download URL for the blob.
	URL(ctx context.Context, key string) (string, error)

	// Delete removes the blob. Deleting a missing blob returns
	// ErrNotFound.
	Delete(ctx context.Context, key string) error

	// List returns the keys currently stored under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// progressReader wraps a reader and reports cumulative bytes read.
type progressReader struct {
	r        io.Reader
	total    int64
	written  int64
	progress ProgressFunc
}

func newProgressReader(r io.Reader, total int64, progress ProgressFunc) io.Reader {
	if progress == nil {
		return r
	}
	return &progressReader{r: r, total: total, progress: progress}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.written += int64(n)
		p.progress(p.written, p.total)
	}
	return n, err
}
