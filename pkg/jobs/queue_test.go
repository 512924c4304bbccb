package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesPayloads(t *testing.T) {
	var processed atomic.Int64
	q := New("test", func(ctx context.Context, n int) error {
		processed.Add(int64(n))
		return nil
	}, Config{Workers: 2})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)
	defer q.Stop()

	for i := 1; i <= 4; i++ {
		require.NoError(t, q.Enqueue(i))
	}

	assert.Eventually(t, func() bool {
		return processed.Load() == 10
	}, 2*time.Second, 5*time.Millisecond)
}

func TestQueueRetriesFailedTasks(t *testing.T) {
	var attempts atomic.Int64
	q := New("test", func(ctx context.Context, s string) error {
		if attempts.Add(1) < 3 {
			return errors.New("transient")
		}
		return nil
	}, Config{MaxRetries: 5, RetryDelay: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)
	defer q.Stop()

	require.NoError(t, q.Enqueue("payload"))

	assert.Eventually(t, func() bool {
		return attempts.Load() == 3
	}, 2*time.Second, 5*time.Millisecond)
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := New("test", func(ctx context.Context, s string) error { return nil }, Config{})
	assert.Error(t, q.Enqueue("payload"))
}

func TestQueueGivesUpAfterMaxRetries(t *testing.T) {
	var attempts atomic.Int64
	q := New("test", func(ctx context.Context, s string) error {
		attempts.Add(1)
		return errors.New("permanent")
	}, Config{MaxRetries: 2, RetryDelay: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)
	defer q.Stop()

	require.NoError(t, q.Enqueue("payload"))

	// Initial attempt plus two retries, then the task is dropped.
	assert.Eventually(t, func() bool {
		return attempts.Load() == 3
	}, 2*time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int64(3), attempts.Load())
}
