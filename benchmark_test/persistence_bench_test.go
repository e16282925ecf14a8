package benchmark_test

import (
	"context"
	"testing"

	"github.com/hupe1980/cellgo/blobstore"
	"github.com/hupe1980/cellgo/codec"
	"github.com/hupe1980/cellgo/persistence"
)

func BenchmarkMarshal(b *testing.B) {
	ca := mixedMesh(b, 100_000)
	for _, c := range []codec.Compression{codec.CompressionNone, codec.CompressionLZ4, codec.CompressionZSTD} {
		b.Run(c.String(), func(b *testing.B) {
			for b.Loop() {
				data, err := codec.Marshal(ca, codec.WithCompression(c))
				if err != nil {
					b.Fatal(err)
				}
				b.SetBytes(int64(len(data)))
			}
		})
	}
}

// BenchmarkLoad measures decoding from a memory-mapped local blob.
func BenchmarkLoad(b *testing.B) {
	ctx := context.Background()
	for _, size := range sizes {
		b.Run(formatCount(size), func(b *testing.B) {
			mgr := persistence.NewManager(blobstore.NewLocalStore(b.TempDir()))
			if err := mgr.Save(ctx, "mesh.cells", mixedMesh(b, size)); err != nil {
				b.Fatal(err)
			}
			b.ResetTimer()
			for b.Loop() {
				if _, err := mgr.Load(ctx, "mesh.cells"); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkCommit(b *testing.B) {
	ctx := context.Background()
	mgr := persistence.NewManager(blobstore.NewMemoryStore())
	ca := mixedMesh(b, 10_000)
	for b.Loop() {
		if _, err := mgr.Commit(ctx, "mesh", ca); err != nil {
			b.Fatal(err)
		}
	}
}
