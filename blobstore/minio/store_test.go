package minio

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// integrationStore connects to MINIO_ENDPOINT (default localhost:9000) and
// skips the test when no server answers.
func integrationStore(t *testing.T) *Store {
	t.Helper()
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:9000"
	}
	s, err := New(endpoint, "test-cellgo",
		WithPrefix("test-prefix/"),
		WithCredentials("minioadmin", "minioadmin"),
	)
	require.NoError(t, err)

	ctx := context.Background()
	if _, err := s.client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}
	require.NoError(t, s.EnsureBucket(ctx))
	return s
}

func TestStore_Integration(t *testing.T) {
	s := integrationStore(t)
	ctx := context.Background()
	data := []byte("hello minio world")

	require.NoError(t, s.Put(ctx, "mesh/v00000001.cells", data))
	t.Cleanup(func() { _ = s.Delete(ctx, "mesh/v00000001.cells") })

	b, err := s.Open(ctx, "mesh/v00000001.cells")
	require.NoError(t, err)
	defer b.Close()
	require.Equal(t, int64(len(data)), b.Size())

	buf := make([]byte, len(data))
	n, err := b.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, data, buf[:n])

	rc, err := b.ReadRange(ctx, 6, 5)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "minio", string(got))

	names, err := s.List(ctx, "mesh/")
	require.NoError(t, err)
	assert.Contains(t, names, "mesh/v00000001.cells")

	w, err := s.Create(ctx, "mesh/CURRENT")
	require.NoError(t, err)
	_, err = w.Write([]byte("v00000001.cells"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Close(), os.ErrClosed)
	t.Cleanup(func() { _ = s.Delete(ctx, "mesh/CURRENT") })

	c, err := s.Open(ctx, "mesh/CURRENT")
	require.NoError(t, err)
	assert.Equal(t, int64(15), c.Size())
	require.NoError(t, c.Close())

	require.NoError(t, s.Delete(ctx, "mesh/v00000001.cells"))
	_, err = s.Open(ctx, "mesh/v00000001.cells")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStore_Keys(t *testing.T) {
	s, err := New("localhost:9000", "bucket", WithPrefix("/cells/"))
	require.NoError(t, err)

	assert.Equal(t, "cells/mesh/v00000001.cells", s.key("mesh/v00000001.cells"))
	assert.Equal(t, "mesh/CURRENT", s.name("cells/mesh/CURRENT"))

	bare := NewStore(s.client, "bucket")
	assert.Equal(t, "mesh/CURRENT", bare.key("mesh/CURRENT"))
	assert.Equal(t, "mesh/CURRENT", bare.name("mesh/CURRENT"))
}

func TestBlob_Bounds(t *testing.T) {
	b := &blob{key: "k", size: 4}
	ctx := context.Background()

	_, err := b.ReadAt(ctx, make([]byte, 1), 4)
	assert.ErrorIs(t, err, io.EOF)
	_, err = b.ReadAt(ctx, make([]byte, 1), -1)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	n, err := b.ReadAt(ctx, nil, 0)
	assert.NoError(t, err)
	assert.Zero(t, n)

	_, err = b.ReadRange(ctx, 9, 1)
	assert.ErrorIs(t, err, io.EOF)
	rc, err := b.ReadRange(ctx, 1, 0)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Empty(t, got)

	end, err := b.span(2, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(4), end)
}
