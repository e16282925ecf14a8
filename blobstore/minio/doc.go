// Package minio stores cell arrays on MinIO and other S3-compatible servers
// (Ceph, Garage, SeaweedFS) through the MinIO client, with no AWS SDK
// dependency.
//
//	store, err := minio.New("localhost:9000", "meshes",
//	    minio.WithPrefix("cells"),
//	    minio.WithCredentials(accessKey, secretKey),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	mgr := persistence.NewManager(store)
//
// Reads are ranged GETs; Create streams an upload of unknown length.
// The store does not implement blobstore.ConditionalPutter, so concurrent
// commits to one dataset must be serialized by the caller.
package minio
