package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cellgo"
	"github.com/hupe1980/cellgo/blobstore"
	"github.com/hupe1980/cellgo/codec"
	"github.com/hupe1980/cellgo/resource"
)

func cells(w cellgo.Width, n int) *cellgo.CellArray {
	ca := cellgo.New(cellgo.WithDefaultWidth(w))
	for i := range n {
		ca.InsertNextCell(cellgo.ID(i), cellgo.ID(i+1), cellgo.ID(i+2))
	}
	return ca
}

func TestManager_SaveLoad(t *testing.T) {
	ctx := context.Background()
	for name, store := range map[string]blobstore.BlobStore{
		"Memory": blobstore.NewMemoryStore(),
		"Local":  blobstore.NewLocalStore(t.TempDir()),
	} {
		t.Run(name, func(t *testing.T) {
			m := NewManager(store,
				WithCompression(codec.CompressionLZ4),
				WithController(resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 30})),
			)
			src := cells(cellgo.Width32, 100)
			require.NoError(t, m.Save(ctx, "meshes/a.cells", src))

			got, err := m.Load(ctx, "meshes/a.cells")
			require.NoError(t, err)
			assert.Equal(t, cellgo.Width32, got.Width())
			assert.Equal(t, src.ExportLegacyFormat(), got.ExportLegacyFormat())

			h, err := m.Inspect(ctx, "meshes/a.cells")
			require.NoError(t, err)
			assert.Equal(t, uint64(101), h.NumOffsets)
			assert.Equal(t, codec.CompressionLZ4, h.Compression)

			names, err := m.List(ctx, "meshes/")
			require.NoError(t, err)
			assert.Equal(t, []string{"meshes/a.cells"}, names)

			require.NoError(t, m.Delete(ctx, "meshes/a.cells"))
			_, err = m.Load(ctx, "meshes/a.cells")
			assert.ErrorIs(t, err, blobstore.ErrNotFound)
		})
	}
}

func TestManager_MemoryBudget(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1024})
	m := NewManager(blobstore.NewMemoryStore(), WithController(rc))

	require.NoError(t, m.Save(context.Background(), "small.cells", cells(cellgo.Width32, 10)))
	assert.Zero(t, rc.MemoryUsage(), "encode buffer released")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := m.Save(ctx, "large.cells", cells(cellgo.Width64, 1000))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, rc.MemoryUsage())

	assert.ErrorIs(t, m.Save(context.Background(), "nil.cells", nil), cellgo.ErrNilSource)
}

func TestManager_LoadCorrupt(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	m := NewManager(store)

	require.NoError(t, store.Put(ctx, "bad", []byte("not a cell array, but long enough for a header......")))
	_, err := m.Load(ctx, "bad")
	assert.ErrorIs(t, err, codec.ErrInvalidMagic)

	require.NoError(t, store.Put(ctx, "short", []byte("CELA")))
	_, err = m.Inspect(ctx, "short")
	assert.ErrorIs(t, err, codec.ErrTruncated)
}

func TestManager_Commit(t *testing.T) {
	ctx := context.Background()
	m := NewManager(blobstore.NewMemoryStore())

	_, _, err := m.Head(ctx, "mesh")
	require.ErrorIs(t, err, ErrNoCommits)

	for i := 1; i <= 3; i++ {
		v, err := m.Commit(ctx, "mesh", cells(cellgo.Width64, i))
		require.NoError(t, err)
		assert.Equal(t, uint64(i), v)
	}

	ca, v, err := m.Head(ctx, "mesh", cellgo.WithLogger(cellgo.NoopLogger()))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), v)
	assert.Equal(t, 3, ca.NumberOfCells())

	versions, err := m.Versions(ctx, "mesh")
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3}, versions)

	old, err := m.Load(ctx, VersionName("mesh", 1))
	require.NoError(t, err)
	assert.Equal(t, 1, old.NumberOfCells())

	names, err := m.List(ctx, "mesh/")
	require.NoError(t, err)
	assert.Equal(t, []string{"mesh/CURRENT", "mesh/v00000001.cells", "mesh/v00000002.cells", "mesh/v00000003.cells"}, names)
}

func TestManager_CommitConcurrent(t *testing.T) {
	ctx := context.Background()
	m := NewManager(blobstore.NewMemoryStore())

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = m.Commit(ctx, "mesh", cells(cellgo.Width32, i+1))
		}()
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	versions, err := m.Versions(ctx, "mesh")
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3, 4}, versions, "no version was overwritten")

	_, v, err := m.Head(ctx, "mesh")
	require.NoError(t, err)
	assert.Contains(t, versions, v)
}

func TestManager_CommitKeepsNewerPointer(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	m := NewManager(store)

	require.NoError(t, store.Put(ctx, "mesh/CURRENT", []byte("v00000009.cells")))
	v, err := m.Commit(ctx, "mesh", cells(cellgo.Width32, 1))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)

	cur, err := m.Current(ctx, "mesh")
	require.NoError(t, err)
	assert.Equal(t, uint64(9), cur, "pointer does not move backwards")

	require.NoError(t, store.Put(ctx, "mesh/CURRENT", []byte("latest")))
	v, err = m.Commit(ctx, "mesh", cells(cellgo.Width32, 2))
	require.NoError(t, err)
	cur, err = m.Current(ctx, "mesh")
	require.NoError(t, err)
	assert.Equal(t, v, cur, "unreadable pointer is replaced")
}

func TestManager_Prune(t *testing.T) {
	ctx := context.Background()
	m := NewManager(blobstore.NewMemoryStore())
	for i := 1; i <= 5; i++ {
		_, err := m.Commit(ctx, "mesh", cells(cellgo.Width32, i))
		require.NoError(t, err)
	}

	deleted, err := m.Prune(ctx, "mesh", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	versions, err := m.Versions(ctx, "mesh")
	require.NoError(t, err)
	assert.Equal(t, []uint64{4, 5}, versions)

	deleted, err = m.Prune(ctx, "mesh", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, v, err := m.Head(ctx, "mesh")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), v, "current version survives")
}

func TestManager_InvalidPointer(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	m := NewManager(store)

	require.NoError(t, store.Put(ctx, "mesh/CURRENT", []byte("latest")))
	_, _, err := m.Head(ctx, "mesh")
	assert.ErrorIs(t, err, ErrInvalidPointer)

	for _, bad := range []string{"", ".", "mesh/", "a/../b"} {
		_, err := m.Commit(ctx, bad, cells(cellgo.Width32, 1))
		assert.ErrorIs(t, err, ErrInvalidDataset, bad)
	}
}

func TestVersionName(t *testing.T) {
	assert.Equal(t, "mesh/v00000042.cells", VersionName("mesh", 42))
	v, ok := parseVersion("v00000042.cells")
	assert.True(t, ok)
	assert.Equal(t, uint64(42), v)
	for _, bad := range []string{"v0.cells", "x00000001.cells", "v00000001.bin", "vabc.cells"} {
		_, ok := parseVersion(bad)
		assert.False(t, ok, bad)
	}
}
