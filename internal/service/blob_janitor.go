package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/notehub/notehub-api/pkg/jobs"
	"github.com/notehub/notehub-api/pkg/storage"
)

// BlobJanitor retries blob deletions that failed inline. Deletes are
// idempotent, so a blob removed in the meantime just drains the task.
type BlobJanitor struct {
	queue  *jobs.Queue[string]
	logger *zap.Logger
}

// NewBlobJanitor builds the janitor with its own worker queue.
func NewBlobJanitor(blobs storage.BlobStore, logger *zap.Logger) *BlobJanitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	queue := jobs.New("blob_cleanup", func(ctx context.Context, blobID string) error {
		_, err := blobs.Delete(ctx, blobID)
		return err
	}, jobs.Config{
		Workers:    1,
		MaxRetries: 5,
		RetryDelay: 30 * time.Second,
		Logger:     logger,
	})
	return &BlobJanitor{queue: queue, logger: logger}
}

// Start launches the cleanup workers.
func (j *BlobJanitor) Start(ctx context.Context) {
	j.queue.Start(ctx)
}

// Stop waits for in-flight cleanups to finish.
func (j *BlobJanitor) Stop() {
	j.queue.Stop()
}

// Schedule queues a blob for background deletion.
func (j *BlobJanitor) Schedule(blobID string) {
	if err := j.queue.Enqueue(blobID); err != nil {
		j.logger.Warn("failed to schedule blob cleanup", zap.String("blobId", blobID), zap.Error(err))
	}
}
