package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	"gocloud.dev/blob/memblob"

	"github.com/diffrun/opsdesk/internal/errors"
)

func put(t *testing.T, bucket *blob.Bucket, key, body string, metadata map[string]string) {
	t.Helper()
	err := bucket.WriteAll(context.Background(), key, []byte(body), &blob.WriterOptions{Metadata: metadata})
	require.NoError(t, err)
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func newStore(t *testing.T) (*ArtifactStore, *blob.Bucket) {
	t.Helper()
	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { _ = bucket.Close() })
	return NewArtifactStore(bucket, "https://cdn.example.com/"), bucket
}

func TestArtifactStore_Approved(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		store, bucket := newStore(t)
		put(t, bucket, "output/job-1/final_coverpage/cover.pdf", "cover", nil)
		put(t, bucket, "output/job-1/approved_output/notes.txt", "ignore", nil)
		put(t, bucket, "output/job-1/approved_output/book.pdf", "interior", map[string]string{"total_pages": "42"})

		files, err := store.Approved(ctx, "job-1")
		require.NoError(t, err)

		assert.Equal(t, "https://cdn.example.com/output/job-1/final_coverpage/cover.pdf", files.Cover.URL)
		assert.Equal(t, md5Hex("cover"), files.Cover.MD5Sum)
		assert.Equal(t, "output/job-1/approved_output/book.pdf", files.Interior.Key)
		assert.Equal(t, md5Hex("interior"), files.Interior.MD5Sum)
		assert.Equal(t, 42, files.TotalPages)
	})

	t.Run("Error_MissingInterior", func(t *testing.T) {
		store, bucket := newStore(t)
		put(t, bucket, "output/job-2/final_coverpage/cover.pdf", "cover", nil)

		_, err := store.Approved(ctx, "job-2")
		assert.ErrorIs(t, err, ErrArtifactNotFound)
		assert.True(t, errors.Is(err, errors.ErrNotFound))
	})
}

func TestArtifactStore_MoveToPrevious(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		store, bucket := newStore(t)
		put(t, bucket, "output/job-1/final_coverpage/cover.pdf", "cover", nil)
		put(t, bucket, "output/job-1/approved_output/book.pdf", "interior", nil)
		put(t, bucket, "output/job-1/approved_output/pages/p1.png", "p1", nil)
		put(t, bucket, "output/job-1/preview/p.png", "keep", nil)

		moved, err := store.MoveToPrevious(ctx, "job-1")
		require.NoError(t, err)
		assert.Equal(t, 3, moved)

		for _, key := range []string{
			"output/job-1/previous/final_coverpage/cover.pdf",
			"output/job-1/previous/approved_output/book.pdf",
			"output/job-1/previous/approved_output/pages/p1.png",
			"output/job-1/preview/p.png",
		} {
			ok, err := bucket.Exists(ctx, key)
			require.NoError(t, err)
			assert.True(t, ok, key)
		}
		ok, err := bucket.Exists(ctx, "output/job-1/approved_output/book.pdf")
		require.NoError(t, err)
		assert.False(t, ok)

		body, err := bucket.ReadAll(ctx, "output/job-1/previous/approved_output/book.pdf")
		require.NoError(t, err)
		assert.Equal(t, "interior", string(body))
	})

	t.Run("Success_NothingToMove", func(t *testing.T) {
		store, _ := newStore(t)
		moved, err := store.MoveToPrevious(ctx, "job-9")
		require.NoError(t, err)
		assert.Zero(t, moved)
	})
}
