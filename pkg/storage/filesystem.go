package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalBlobStore persists blobs on disk under a base directory: one
// content file per id plus a JSON sidecar carrying filename and media
// type. Intended for development and tests.
type LocalBlobStore struct {
	baseDir string
}

type localBlobMeta struct {
	Filename  string            `json:"filename"`
	MediaType string            `json:"media_type"`
	Size      int64             `json:"size"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// NewLocalBlobStore ensures the base directory exists and returns a handle.
func NewLocalBlobStore(baseDir string) (*LocalBlobStore, error) {
	if baseDir == "" {
		baseDir = "./blobs"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}
	return &LocalBlobStore{baseDir: baseDir}, nil
}

// Put streams the content to disk under a fresh id.
func (s *LocalBlobStore) Put(ctx context.Context, r io.Reader, size int64, filename, mediaType string, metadata map[string]string) (string, error) {
	id := newBlobID()

	file, err := os.Create(s.contentPath(id))
	if err != nil {
		return "", fmt.Errorf("create blob file: %w", err)
	}
	written, err := io.Copy(file, r)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(s.contentPath(id))
		return "", fmt.Errorf("write blob content: %w", err)
	}

	meta := localBlobMeta{
		Filename:  filename,
		MediaType: mediaType,
		Size:      written,
		Metadata:  metadata,
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		_ = os.Remove(s.contentPath(id))
		return "", fmt.Errorf("encode blob metadata: %w", err)
	}
	if err := os.WriteFile(s.metaPath(id), raw, 0o644); err != nil {
		_ = os.Remove(s.contentPath(id))
		return "", fmt.Errorf("write blob metadata: %w", err)
	}
	return id, nil
}

// Get opens the blob content and decodes the sidecar metadata.
func (s *LocalBlobStore) Get(ctx context.Context, id string) (io.ReadCloser, *BlobInfo, error) {
	if !validBlobID(id) {
		return nil, nil, ErrNotFound
	}
	raw, err := os.ReadFile(s.metaPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("read blob metadata: %w", err)
	}
	var meta localBlobMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, nil, fmt.Errorf("decode blob metadata: %w", err)
	}
	file, err := os.Open(s.contentPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("open blob content: %w", err)
	}
	info := &BlobInfo{
		ID:        id,
		Filename:  meta.Filename,
		MediaType: meta.MediaType,
		Size:      meta.Size,
	}
	return file, info, nil
}

// Delete removes content and sidecar, reporting whether anything existed.
func (s *LocalBlobStore) Delete(ctx context.Context, id string) (bool, error) {
	if !validBlobID(id) {
		return false, nil
	}
	err := os.Remove(s.contentPath(id))
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("delete blob content: %w", err)
	}
	removed := err == nil
	if merr := os.Remove(s.metaPath(id)); merr != nil && !os.IsNotExist(merr) {
		return removed, fmt.Errorf("delete blob metadata: %w", merr)
	}
	return removed, nil
}

// Exists reports whether the blob content is present.
func (s *LocalBlobStore) Exists(ctx context.Context, id string) (bool, error) {
	if !validBlobID(id) {
		return false, nil
	}
	if _, err := os.Stat(s.contentPath(id)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat blob content: %w", err)
	}
	return true, nil
}

func (s *LocalBlobStore) contentPath(id string) string {
	return filepath.Join(s.baseDir, id)
}

func (s *LocalBlobStore) metaPath(id string) string {
	return filepath.Join(s.baseDir, id+".meta.json")
}
