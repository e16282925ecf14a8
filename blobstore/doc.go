// Package blobstore abstracts where encoded cell arrays live.
//
// BlobStore is the interface the persistence layer reads and writes through.
// Blobs are immutable once written: writers either Put a whole blob or stream
// it through Create and make it visible with Close. Implementations must be
// safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, memory-mapped reads, atomic renames
//   - MemoryStore: in-process map, for tests and scratch work
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - s3.DDBCommitStore: S3 plus a DynamoDB commit log for the CURRENT pointer
//   - minio.Store: MinIO and other S3-compatible servers
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Create(ctx, name) (WritableBlob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Blob.ReadRange lets remote backends serve partial reads without buffering the
// whole object; NewReader turns any Blob into a sequential io.Reader.
package blobstore
