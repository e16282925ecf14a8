// Package persistence stores cell arrays in a blobstore.BlobStore.
//
// Manager encodes arrays with the codec package and reads them back through
// the store, throttled by an optional resource.Controller. Besides plain named
// blobs it keeps versioned datasets:
//
//	mesh/v00000001.cells
//	mesh/v00000002.cells
//	mesh/CURRENT          -> "v00000002.cells"
//
// Commit writes the next version and then moves CURRENT; Head loads whatever
// CURRENT points at. A version blob is never rewritten, so readers holding an
// older version keep working while new commits land. Stores implementing
// blobstore.ConditionalPutter detect two writers racing for the same version.
package persistence
