package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/hupe1980/cellgo/blobstore"
	minioblob "github.com/hupe1980/cellgo/blobstore/minio"
	s3blob "github.com/hupe1980/cellgo/blobstore/s3"
	"github.com/hupe1980/cellgo/internal/config"
)

func openStore(ctx context.Context, cfg *config.Config) (blobstore.BlobStore, error) {
	u, err := url.Parse(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	prefix := strings.TrimPrefix(u.Path, "/")

	switch u.Scheme {
	case "file":
		dir := u.Host + u.Path
		if dir == "" {
			dir = "."
		}
		return blobstore.NewLocalStore(dir), nil
	case "mem":
		return blobstore.NewMemoryStore(), nil
	case "s3":
		opts := []s3blob.Option{s3blob.WithPrefix(prefix), s3blob.WithRegion(cfg.S3.Region)}
		if cfg.S3.DynamoDBTable != "" {
			return s3blob.NewCommitStore(ctx, u.Host, cfg.S3.DynamoDBTable, opts...)
		}
		return s3blob.New(ctx, u.Host, opts...)
	case "minio":
		bucket, rootPrefix, _ := strings.Cut(prefix, "/")
		if bucket == "" {
			return nil, fmt.Errorf("store: %s has no bucket", cfg.Store)
		}
		return minioblob.New(u.Host, bucket,
			minioblob.WithPrefix(rootPrefix),
			minioblob.WithCredentials(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey),
			minioblob.WithSecure(cfg.MinIO.Secure),
			minioblob.WithRegion(cfg.S3.Region),
		)
	}
	return nil, fmt.Errorf("%w: %s", config.ErrInvalidStore, cfg.Store)
}
