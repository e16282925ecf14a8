package s3

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cellgo/blobstore"
)

// TestIntegration runs against a real bucket named by S3_BUCKET with the
// default AWS credential chain.
func TestIntegration(t *testing.T) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		t.Skip("S3_BUCKET not set")
	}

	ctx := context.Background()
	store, err := New(ctx, bucket, WithPrefix(fmt.Sprintf("cellgo-it-%d", time.Now().UnixNano())))
	require.NoError(t, err)

	t.Run("StreamedUpload", func(t *testing.T) {
		name := "mesh/v00000001.cells"
		data := make([]byte, 12<<20) // more than one multipart part
		_, _ = rand.Read(data)

		w, err := store.Create(ctx, name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
		t.Cleanup(func() { _ = store.Delete(ctx, name) })

		b, err := store.Open(ctx, name)
		require.NoError(t, err)
		defer b.Close()
		assert.Equal(t, int64(len(data)), b.Size())

		rc, err := b.ReadRange(ctx, 9<<20, 64)
		require.NoError(t, err)
		got, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.Equal(t, data[9<<20:9<<20+64], got)
	})

	t.Run("ConditionalPut", func(t *testing.T) {
		name := "mesh/v00000002.cells"
		require.NoError(t, store.PutIfNotExists(ctx, name, []byte("a")))
		t.Cleanup(func() { _ = store.Delete(ctx, name) })
		assert.ErrorIs(t, store.PutIfNotExists(ctx, name, []byte("b")), blobstore.ErrExists)

		names, err := store.List(ctx, "mesh/")
		require.NoError(t, err)
		assert.Contains(t, names, name)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := store.Open(ctx, "mesh/missing.cells")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})
}
