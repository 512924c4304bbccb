package storage

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
)

// ErrNotFound reports that no blob exists under the given id. It covers
// ids that were never issued as well as ids that are syntactically
// invalid for the backend; neither case is a fault.
var ErrNotFound = errors.New("blob not found")

// BlobInfo describes a stored blob.
type BlobInfo struct {
	ID        string
	Filename  string
	MediaType string
	Size      int64
}

// BlobStore is content-addressed binary storage. Ids are opaque and
// stable for the life of the referencing record. The store enforces no
// size limit; callers cap uploads before Put.
type BlobStore interface {
	// Put stores the stream and returns the generated blob id.
	Put(ctx context.Context, r io.Reader, size int64, filename, mediaType string, metadata map[string]string) (string, error)
	// Get opens the blob for reading. Returns ErrNotFound for unknown ids.
	Get(ctx context.Context, id string) (io.ReadCloser, *BlobInfo, error)
	// Delete removes the blob, reporting whether anything was removed.
	Delete(ctx context.Context, id string) (bool, error)
	// Exists reports whether the id currently resolves to a blob.
	Exists(ctx context.Context, id string) (bool, error)
}

func newBlobID() string {
	return uuid.NewString()
}

// validBlobID rejects anything that is not an issued uuid, which also
// keeps path traversal out of filesystem-backed stores.
func validBlobID(id string) bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
