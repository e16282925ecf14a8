package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/hupe1980/cellgo"
	"github.com/hupe1980/cellgo/blobstore"
	"github.com/hupe1980/cellgo/persistence"
)

// readLegacy parses whitespace-separated integers.
func readLegacy(r io.Reader) ([]cellgo.ID, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	sc.Split(bufio.ScanWords)

	var out []cellgo.ID
	for sc.Scan() {
		v, err := strconv.ParseInt(sc.Text(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("legacy value %d: %w", len(out), err)
		}
		out = append(out, v)
	}
	return out, sc.Err()
}

// writeLegacy writes one cell per line: the count followed by the point ids.
func writeLegacy(w io.Writer, data []cellgo.ID) error {
	bw := bufio.NewWriter(w)
	var buf []byte
	for i := 0; i < len(data); {
		n := int(data[i])
		buf = strconv.AppendInt(buf[:0], data[i], 10)
		for _, pt := range data[i+1 : i+1+n] {
			buf = append(buf, ' ')
			buf = strconv.AppendInt(buf, pt, 10)
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
		i += n + 1
	}
	return bw.Flush()
}

// target is a loaded array and where it came from.
type target struct {
	cells   *cellgo.CellArray
	name    string
	dataset bool
	version uint64
}

// load reads name as a blob, or as a dataset head when no such blob exists.
func (e *env) load(ctx context.Context, name string) (*target, error) {
	ca, err := e.mgr.Load(ctx, name, e.opts...)
	if err == nil {
		return &target{cells: ca, name: name}, nil
	}
	if !errors.Is(err, blobstore.ErrNotFound) {
		return nil, err
	}
	ca, v, headErr := e.mgr.Head(ctx, name, e.opts...)
	if headErr != nil {
		if errors.Is(headErr, persistence.ErrNoCommits) || errors.Is(headErr, persistence.ErrInvalidDataset) {
			return nil, fmt.Errorf("%s: %w", name, blobstore.ErrNotFound)
		}
		return nil, headErr
	}
	return &target{cells: ca, name: name, dataset: true, version: v}, nil
}

// save writes t back: a new version for datasets, in place for blobs.
func (e *env) save(ctx context.Context, t *target) (string, error) {
	if !t.dataset {
		return t.name, e.mgr.Save(ctx, t.name, t.cells)
	}
	v, err := e.mgr.Commit(ctx, t.name, t.cells)
	if err != nil {
		return "", err
	}
	t.version = v
	return persistence.VersionName(t.name, v), nil
}
