package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/minio/minio-go/v7"
)

var errAborted = errors.New("minio: upload aborted")

type blob struct {
	client *minio.Client
	bucket string
	key    string
	size   int64
}

// span clamps [off, off+length) to the object and reports whether any
// byte remains.
func (b *blob) span(off, length int64) (end int64, err error) {
	if off < 0 || length < 0 {
		return 0, io.ErrUnexpectedEOF
	}
	if off >= b.size {
		return 0, io.EOF
	}
	return min(off+length, b.size), nil
}

func (b *blob) get(ctx context.Context, off, end int64) (*minio.Object, error) {
	opts := minio.GetObjectOptions{}
	// SetRange takes an inclusive end.
	if err := opts.SetRange(off, end-1); err != nil {
		return nil, err
	}
	return b.client.GetObject(ctx, b.bucket, b.key, opts)
}

func (b *blob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	end, err := b.span(off, int64(len(p)))
	if err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	obj, err := b.get(ctx, off, end)
	if err != nil {
		return 0, err
	}
	defer func() { _ = obj.Close() }()

	n, err := io.ReadFull(obj, p[:end-off])
	if err == nil && n < len(p) {
		err = io.EOF
	}
	return n, err
}

func (b *blob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	end, err := b.span(off, length)
	if err != nil {
		return nil, err
	}
	if end == off {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	return b.get(ctx, off, end)
}

func (b *blob) Size() int64 { return b.size }

func (b *blob) Close() error { return nil }

// streamingBlob pipes writes into a PutObject running in the background.
type streamingBlob struct {
	pw     *io.PipeWriter
	done   chan error
	cancel context.CancelFunc
	once   sync.Once
	err    error
}

func newStreamingBlob(ctx context.Context, client *minio.Client, bucket, key string) *streamingBlob {
	// The upload outlives the caller's ctx deadline until Close or Abort.
	upCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	pr, pw := io.Pipe()
	w := &streamingBlob{pw: pw, done: make(chan error, 1), cancel: cancel}

	go func() {
		_, err := client.PutObject(upCtx, bucket, key, pr, -1, minio.PutObjectOptions{ContentType: contentType})
		_ = pr.CloseWithError(err)
		w.done <- err
	}()
	return w
}

func (w *streamingBlob) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

func (w *streamingBlob) Sync() error { return nil }

func (w *streamingBlob) finish(closeErr error) error {
	called := false
	w.once.Do(func() {
		called = true
		defer w.cancel()
		if closeErr != nil {
			_ = w.pw.CloseWithError(closeErr)
		} else {
			_ = w.pw.Close()
		}
		w.err = <-w.done
		if closeErr != nil {
			w.err = nil
		}
	})
	if !called {
		return os.ErrClosed
	}
	return w.err
}

// Close completes the upload.
func (w *streamingBlob) Close() error { return w.finish(nil) }

// Abort cancels the upload; nothing becomes visible.
func (w *streamingBlob) Abort() error { return w.finish(errAborted) }
