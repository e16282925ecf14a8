package persistence

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/hupe1980/cellgo"
	"github.com/hupe1980/cellgo/blobstore"
	"github.com/hupe1980/cellgo/codec"
	"github.com/hupe1980/cellgo/resource"
)

const (
	// PointerName is the blob inside a dataset naming its current version.
	PointerName = "CURRENT"

	versionPrefix = "v"
	versionSuffix = ".cells"
	maxAttempts   = 8
)

var (
	// ErrNoCommits is returned by Head for a dataset without a CURRENT pointer.
	ErrNoCommits = errors.New("persistence: dataset has no commits")
	// ErrInvalidPointer is returned when CURRENT does not name a version blob.
	ErrInvalidPointer = errors.New("persistence: invalid CURRENT pointer")
	// ErrInvalidDataset is returned for empty or malformed dataset names.
	ErrInvalidDataset = errors.New("persistence: invalid dataset name")
)

// Option configures a Manager.
type Option func(*Manager)

// WithController throttles reads and writes through the controller's IO limit
// and reserves its memory budget for encode buffers.
func WithController(rc *resource.Controller) Option {
	return func(m *Manager) {
		m.rc = rc
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *cellgo.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithCompression sets the payload compression for Save and Commit.
func WithCompression(c codec.Compression) Option {
	return func(m *Manager) {
		m.compression = c
	}
}

// Manager saves and loads cell arrays. It is safe for concurrent use when the
// underlying store is.
type Manager struct {
	store       blobstore.BlobStore
	rc          *resource.Controller
	logger      *cellgo.Logger
	compression codec.Compression
}

// NewManager creates a manager on store.
func NewManager(store blobstore.BlobStore, optFns ...Option) *Manager {
	m := &Manager{
		store:  store,
		logger: cellgo.NoopLogger(),
	}
	for _, fn := range optFns {
		fn(m)
	}
	return m
}

// Store returns the underlying blob store.
func (m *Manager) Store() blobstore.BlobStore { return m.store }

// encode marshals ca into a buffer reserved against the memory budget. The
// caller must call release once the buffer has been written.
func (m *Manager) encode(ctx context.Context, ca *cellgo.CellArray) (data []byte, release func(), err error) {
	if ca == nil {
		return nil, nil, cellgo.ErrNilSource
	}
	reserved := codec.HeaderSize + ca.ActualMemorySize()
	if err := m.rc.AcquireMemory(ctx, reserved); err != nil {
		return nil, nil, err
	}
	release = func() { m.rc.ReleaseMemory(reserved) }

	data, err = codec.Marshal(ca, codec.WithCompression(m.compression))
	if err == nil {
		err = m.rc.AcquireIO(ctx, len(data))
	}
	if err != nil {
		release()
		return nil, nil, err
	}
	return data, release, nil
}

// Save encodes ca and writes it to name, replacing any existing blob.
func (m *Manager) Save(ctx context.Context, name string, ca *cellgo.CellArray) error {
	data, release, err := m.encode(ctx, ca)
	if err == nil {
		err = m.store.Put(ctx, name, data)
		release()
	}
	m.logger.LogPersist(ctx, "save", name, len(data), err)
	return err
}

// Load decodes the blob name. opts configure the returned array.
func (m *Manager) Load(ctx context.Context, name string, opts ...cellgo.Option) (*cellgo.CellArray, error) {
	b, err := m.store.Open(ctx, name)
	if err != nil {
		m.logger.LogPersist(ctx, "load", name, 0, err)
		return nil, err
	}
	defer func() { _ = b.Close() }()

	var r io.Reader
	if mb, ok := b.(blobstore.Mappable); ok {
		data, err := mb.Bytes()
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(data)
	} else {
		r = blobstore.NewReader(ctx, b)
	}

	ca, err := codec.Decode(resource.NewRateLimitedReader(ctx, r, m.rc), opts...)
	if err != nil {
		err = fmt.Errorf("persistence: decode %s: %w", name, err)
	}
	m.logger.LogPersist(ctx, "load", name, int(b.Size()), err)
	return ca, err
}

// Inspect reads only the codec header of name.
func (m *Manager) Inspect(ctx context.Context, name string) (codec.Header, error) {
	b, err := m.store.Open(ctx, name)
	if err != nil {
		return codec.Header{}, err
	}
	defer func() { _ = b.Close() }()

	rc, err := b.ReadRange(ctx, 0, codec.HeaderSize)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return codec.Header{}, codec.ErrTruncated
		}
		return codec.Header{}, err
	}
	defer func() { _ = rc.Close() }()
	return codec.ReadHeader(rc)
}

// Delete removes name.
func (m *Manager) Delete(ctx context.Context, name string) error {
	err := m.store.Delete(ctx, name)
	m.logger.LogPersist(ctx, "delete", name, 0, err)
	return err
}

// List returns the blob names starting with prefix.
func (m *Manager) List(ctx context.Context, prefix string) ([]string, error) {
	return m.store.List(ctx, prefix)
}

// VersionName returns the blob name of a dataset version.
func VersionName(dataset string, version uint64) string {
	return path.Join(dataset, fmt.Sprintf("%s%08d%s", versionPrefix, version, versionSuffix))
}

func parseVersion(base string) (uint64, bool) {
	if !strings.HasPrefix(base, versionPrefix) || !strings.HasSuffix(base, versionSuffix) {
		return 0, false
	}
	v, err := strconv.ParseUint(strings.TrimSuffix(strings.TrimPrefix(base, versionPrefix), versionSuffix), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return v, true
}

func checkDataset(dataset string) error {
	if dataset == "" || dataset == "." || strings.HasSuffix(dataset, "/") || path.Clean(dataset) != dataset {
		return fmt.Errorf("%w: %q", ErrInvalidDataset, dataset)
	}
	return nil
}

// Versions returns the committed versions of dataset in ascending order.
func (m *Manager) Versions(ctx context.Context, dataset string) ([]uint64, error) {
	if err := checkDataset(dataset); err != nil {
		return nil, err
	}
	names, err := m.store.List(ctx, dataset+"/")
	if err != nil {
		return nil, err
	}
	var versions []uint64
	for _, name := range names {
		if path.Dir(name) != dataset {
			continue
		}
		if v, ok := parseVersion(path.Base(name)); ok {
			versions = append(versions, v)
		}
	}
	slices.Sort(versions)
	return versions, nil
}

// Commit writes ca as the next version of dataset and points CURRENT at it.
// CURRENT never moves to an older version than the one it names.
func (m *Manager) Commit(ctx context.Context, dataset string, ca *cellgo.CellArray) (uint64, error) {
	if err := checkDataset(dataset); err != nil {
		return 0, err
	}
	data, release, err := m.encode(ctx, ca)
	if err != nil {
		return 0, err
	}
	defer release()

	versions, err := m.Versions(ctx, dataset)
	if err != nil {
		return 0, err
	}
	next := uint64(1)
	if len(versions) > 0 {
		next = versions[len(versions)-1] + 1
	}

	cp, conditional := m.store.(blobstore.ConditionalPutter)
	for attempt := 0; ; attempt++ {
		name := VersionName(dataset, next)
		if conditional {
			err = cp.PutIfNotExists(ctx, name, data)
		} else {
			err = m.store.Put(ctx, name, data)
		}
		if errors.Is(err, blobstore.ErrExists) && attempt+1 < maxAttempts {
			m.logger.WarnContext(ctx, "version taken by a concurrent commit", "blob", name)
			next++
			continue
		}
		m.logger.LogPersist(ctx, "commit", name, len(data), err)
		if err != nil {
			return 0, err
		}
		break
	}

	if err := m.publish(ctx, dataset, next); err != nil {
		return 0, err
	}
	return next, nil
}

// publish points CURRENT at version unless it already names a newer one.
// The read and the write are not atomic: two commits racing on the pointer
// can still leave it one version behind, so callers that need a strict head
// serialize their commits.
func (m *Manager) publish(ctx context.Context, dataset string, version uint64) error {
	pointer := path.Join(dataset, PointerName)
	cur, err := m.Current(ctx, dataset)
	switch {
	case errors.Is(err, ErrNoCommits), errors.Is(err, ErrInvalidPointer):
	case err != nil:
		return err
	case cur >= version:
		m.logger.WarnContext(ctx, "newer version already published", "blob", pointer, "current", cur, "version", version)
		return nil
	}

	err = m.store.Put(ctx, pointer, []byte(path.Base(VersionName(dataset, version))))
	m.logger.LogPersist(ctx, "publish", pointer, 0, err)
	return err
}

// Current returns the version CURRENT points at.
func (m *Manager) Current(ctx context.Context, dataset string) (uint64, error) {
	if err := checkDataset(dataset); err != nil {
		return 0, err
	}
	b, err := m.store.Open(ctx, path.Join(dataset, PointerName))
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return 0, fmt.Errorf("%w: %s", ErrNoCommits, dataset)
		}
		return 0, err
	}
	defer func() { _ = b.Close() }()

	raw, err := io.ReadAll(blobstore.NewReader(ctx, b))
	if err != nil {
		return 0, err
	}
	v, ok := parseVersion(strings.TrimSpace(string(raw)))
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPointer, raw)
	}
	return v, nil
}

// Head loads the current version of dataset.
func (m *Manager) Head(ctx context.Context, dataset string, opts ...cellgo.Option) (*cellgo.CellArray, uint64, error) {
	v, err := m.Current(ctx, dataset)
	if err != nil {
		return nil, 0, err
	}
	ca, err := m.Load(ctx, VersionName(dataset, v), opts...)
	if err != nil {
		return nil, 0, err
	}
	return ca, v, nil
}

// Prune deletes all but the newest keep versions of dataset. The current
// version is never deleted.
func (m *Manager) Prune(ctx context.Context, dataset string, keep int) (int, error) {
	versions, err := m.Versions(ctx, dataset)
	if err != nil {
		return 0, err
	}
	current, err := m.Current(ctx, dataset)
	if err != nil && !errors.Is(err, ErrNoCommits) {
		return 0, err
	}

	keep = max(keep, 0)
	deleted := 0
	for _, v := range versions[:max(len(versions)-keep, 0)] {
		if v == current {
			continue
		}
		if err := m.Delete(ctx, VersionName(dataset, v)); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}
