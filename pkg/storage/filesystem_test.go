package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *LocalBlobStore {
	t.Helper()

	store, err := NewLocalBlobStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestLocalBlobStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	content := []byte("lecture notes on predicate logic")
	id, err := store.Put(ctx, bytes.NewReader(content), int64(len(content)), "logic.pdf", "application/pdf", map[string]string{"owner": "u-1"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	reader, info, err := store.Get(ctx, id)
	require.NoError(t, err)
	defer reader.Close()

	got, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, id, info.ID)
	assert.Equal(t, "logic.pdf", info.Filename)
	assert.Equal(t, "application/pdf", info.MediaType)
	assert.Equal(t, int64(len(content)), info.Size)
}

func TestLocalBlobStorePutGeneratesDistinctIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Put(ctx, strings.NewReader("a"), 1, "a.txt", "text/plain", nil)
	require.NoError(t, err)
	second, err := store.Put(ctx, strings.NewReader("a"), 1, "a.txt", "text/plain", nil)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestLocalBlobStoreGetUnknownID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, _, err := store.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = store.Get(ctx, "../escape")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalBlobStoreDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Put(ctx, strings.NewReader("gone soon"), 9, "tmp.txt", "text/plain", nil)
	require.NoError(t, err)

	removed, err := store.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, removed)

	exists, err := store.Exists(ctx, id)
	require.NoError(t, err)
	assert.False(t, exists)

	// Second delete is a no-op, not an error.
	removed, err = store.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestLocalBlobStoreExists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	exists, err := store.Exists(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.False(t, exists)

	id, err := store.Put(ctx, strings.NewReader("here"), 4, "h.txt", "text/plain", nil)
	require.NoError(t, err)

	exists, err = store.Exists(ctx, id)
	require.NoError(t, err)
	assert.True(t, exists)
}
