package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/notehub/notehub-api/pkg/config"
)

const metaFilenameKey = "Original-Filename"

// MinioBlobStore keeps blobs in an S3-compatible bucket, one object per
// id. Filename travels as user metadata, media type as content type.
type MinioBlobStore struct {
	client *minio.Client
	bucket string
}

// NewMinioBlobStore connects to the object store and ensures the bucket
// exists.
func NewMinioBlobStore(ctx context.Context, cfg config.MinioConfig) (*MinioBlobStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect object store: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &MinioBlobStore{client: client, bucket: cfg.Bucket}, nil
}

func (s *MinioBlobStore) Put(ctx context.Context, r io.Reader, size int64, filename, mediaType string, metadata map[string]string) (string, error) {
	id := newBlobID()

	userMeta := map[string]string{metaFilenameKey: filename}
	for k, v := range metadata {
		userMeta[k] = v
	}

	_, err := s.client.PutObject(ctx, s.bucket, id, r, size, minio.PutObjectOptions{
		ContentType:  mediaType,
		UserMetadata: userMeta,
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return id, nil
}

func (s *MinioBlobStore) Get(ctx context.Context, id string) (io.ReadCloser, *BlobInfo, error) {
	if !validBlobID(id) {
		return nil, nil, ErrNotFound
	}

	stat, err := s.client.StatObject(ctx, s.bucket, id, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("stat object: %w", err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, id, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("get object: %w", err)
	}

	info := &BlobInfo{
		ID:        id,
		Filename:  stat.UserMetadata[metaFilenameKey],
		MediaType: stat.ContentType,
		Size:      stat.Size,
	}
	return obj, info, nil
}

func (s *MinioBlobStore) Delete(ctx context.Context, id string) (bool, error) {
	if !validBlobID(id) {
		return false, nil
	}

	if _, err := s.client.StatObject(ctx, s.bucket, id, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat object: %w", err)
	}

	if err := s.client.RemoveObject(ctx, s.bucket, id, minio.RemoveObjectOptions{}); err != nil {
		return false, fmt.Errorf("remove object: %w", err)
	}
	return true, nil
}

func (s *MinioBlobStore) Exists(ctx context.Context, id string) (bool, error) {
	if !validBlobID(id) {
		return false, nil
	}

	if _, err := s.client.StatObject(ctx, s.bucket, id, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat object: %w", err)
	}
	return true, nil
}

func isNoSuchKey(err error) bool {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp.Code == "NoSuchKey" || resp.StatusCode == 404
	}
	return false
}
