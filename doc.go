// Package cellgo stores the topology of unstructured meshes.
//
// A CellArray holds cells of any size as two flat arrays: offsets and
// connectivity. Cell i uses the point ids connectivity[offsets[i]:offsets[i+1]].
// Both arrays share one element width, 32 or 64 bits, chosen per array and
// convertible at runtime. Small meshes use half the memory; large meshes keep
// full 64-bit ids.
//
// # Quick Start
//
//	cells := cellgo.New()
//	cells.InsertNextCell(0, 1, 2)    // triangle
//	cells.InsertNextCell(2, 3, 4, 5) // quad
//
//	it := cells.NewIterator()
//	for it.GoToFirstCell(); !it.IsDoneWithTraversal(); it.GoToNextCell() {
//	    fmt.Println(it.CurrentCellID(), it.CurrentCell())
//	}
//
// # Storage Width
//
// New arrays use 64-bit storage unless configured otherwise:
//
//	cells := cellgo.New(cellgo.WithDefaultWidth(cellgo.Width32))
//
// Conversions copy the content into arrays of the other width:
//
//	cells.ConvertToSmallestStorage()       // 32-bit if everything fits
//	err := cells.ConvertTo32BitStorage()   // ErrLossyConversion if not
//	cells.ConvertTo64BitStorage()          // always succeeds
//
// Inserts never truncate: 32-bit storage is widened first when a new id or
// the connectivity length would not fit.
//
// # Reading Cells
//
// CellAtID is zero-copy for 64-bit storage, where the element type is ID,
// and converts into a caller-provided scratch slice for 32-bit storage:
//
//	var scratch []cellgo.ID
//	pts := cells.CellAtID(7, scratch)
//
// The returned slice aliases live storage and is not checked against later
// mutations. CellView and Iterator are checked handles: after a structural
// mutation (insert, append, allocate, conversion, SetData, ...) they report
// ErrStaleView and ErrStaleIterator instead of returning stale data.
//
// # Legacy Format
//
// ImportLegacyFormat and ExportLegacyFormat translate from and to the flat
// [n, id_1, ..., id_n]* stream. The location-based accessors (GetCell,
// NextCell, TraversalLocation, ...) remain for callers of that layout and are
// deprecated.
//
// # Parallel Analyses
//
// MaxCellSize, DistinctCellSizes, UsedPoints and Bounds partition the cells
// across goroutines and fold the partial results in order:
//
//	cells := cellgo.New(cellgo.WithParallelism(8, 1<<14))
//	used := cells.UsedPoints() // *roaring64.Bitmap
//
// # Persistence
//
// The codec package defines a checksummed binary format with optional lz4 or
// zstd compression. The persistence package stores encoded arrays in a
// blobstore.BlobStore (local disk, memory, S3 or MinIO) with versioned commits.
//
// # Observability
//
// Logging goes through *slog.Logger (WithLogger). Conversions, allocations,
// reductions and legacy imports are reported to a MetricsCollector
// (WithMetricsCollector); metrics/prommetrics exports them to Prometheus.
package cellgo
