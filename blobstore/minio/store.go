package minio

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/cellgo/blobstore"
)

const contentType = "application/octet-stream"

type storeOptions struct {
	prefix    string
	region    string
	accessKey string
	secretKey string
	secure    bool
}

// Option configures a Store.
type Option func(*storeOptions)

// WithPrefix stores every blob under prefix.
func WithPrefix(prefix string) Option {
	return func(o *storeOptions) {
		o.prefix = strings.Trim(prefix, "/")
	}
}

// WithRegion sets the bucket region used by New.
func WithRegion(region string) Option {
	return func(o *storeOptions) {
		o.region = region
	}
}

// WithCredentials sets static credentials used by New.
func WithCredentials(accessKey, secretKey string) Option {
	return func(o *storeOptions) {
		o.accessKey = accessKey
		o.secretKey = secretKey
	}
}

// WithSecure makes New connect over TLS.
func WithSecure(secure bool) Option {
	return func(o *storeOptions) {
		o.secure = secure
	}
}

func applyOptions(optFns []Option) storeOptions {
	var o storeOptions
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}

// Store is a blobstore.BlobStore on a MinIO or other S3-compatible bucket.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// New connects to the server at endpoint (host:port).
func New(endpoint, bucket string, optFns ...Option) (*Store, error) {
	o := applyOptions(optFns)
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(o.accessKey, o.secretKey, ""),
		Secure: o.secure,
		Region: o.region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: %w", err)
	}
	return &Store{client: client, bucket: bucket, prefix: o.prefix}, nil
}

// NewStore wraps an existing client. Only WithPrefix applies.
func NewStore(client *minio.Client, bucket string, optFns ...Option) *Store {
	o := applyOptions(optFns)
	return &Store{client: client, bucket: bucket, prefix: o.prefix}
}

// EnsureBucket creates the bucket when it does not exist.
func (s *Store) EnsureBucket(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil || ok {
		return err
	}
	return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// name is the inverse of key.
func (s *Store) name(key string) string {
	if s.prefix == "" {
		return key
	}
	return strings.TrimPrefix(strings.TrimPrefix(key, s.prefix), "/")
}

// Open stats name and returns a blob reading it with ranged GETs.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, fmt.Errorf("minio: stat %s: %w", key, err)
	}
	return &blob{client: s.client, bucket: s.bucket, key: key, size: info.Size}, nil
}

// Create streams an upload of unknown size; the object appears on Close.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	return newStreamingBlob(ctx, s.client, s.bucket, s.key(name)), nil
}

// Put uploads data in a single request.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	key := s.key(name)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("minio: put %s: %w", key, err)
	}
	return nil
}

// Delete removes name. Missing objects are ignored.
func (s *Store) Delete(ctx context.Context, name string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// List returns the sorted names that start with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	listPrefix := s.key(prefix)
	if prefix == "" && s.prefix != "" {
		listPrefix += "/"
	} else if strings.HasSuffix(prefix, "/") {
		listPrefix += "/"
	}

	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    listPrefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if n := s.name(obj.Key); n != "" {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	return names, nil
}

func isNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}
