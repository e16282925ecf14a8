// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("cells/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	mgr := persistence.NewManager(store)
//	version, err := mgr.Commit(ctx, "mesh", cells)
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart uploads with CRC32C checksums
//   - Conditional writes (If-None-Match) for versioned commits
//   - DDBCommitStore: DynamoDB-backed CURRENT pointers for concurrent writers
package s3
