package cellgo

import (
	"context"
	"fmt"

	"github.com/hupe1980/cellgo/internal/dispatch"
	"github.com/hupe1980/cellgo/internal/storage"
)

// The legacy format is one flat stream of [n, id_1, ..., id_n] records, one
// per cell. A legacy location is the index of a record's count in that stream;
// for cell i it equals offsets[i] + i.

type legacyStream struct {
	data        []ID
	numCells    int
	numIDs      int
	lo, hi      ID
	pointOffset ID
}

// scanLegacy validates a legacy stream without touching any cell array.
func scanLegacy(data []ID) (legacyStream, error) {
	s := legacyStream{data: data}
	first := true
	for i := 0; i < len(data); {
		n := data[i]
		if n < 0 {
			return s, fmt.Errorf("%w: negative count %d at %d", ErrMalformedLegacy, n, i)
		}
		if ID(len(data)-i-1) < n {
			return s, fmt.Errorf("%w: record at %d needs %d ids, %d left", ErrMalformedLegacy, i, n, len(data)-i-1)
		}
		for _, p := range data[i+1 : i+1+int(n)] {
			if first {
				s.lo, s.hi, first = p, p, false
			}
			s.lo, s.hi = min(s.lo, p), max(s.hi, p)
		}
		s.numCells++
		s.numIDs += int(n)
		i += int(n) + 1
	}
	return s, nil
}

// ImportLegacyFormat replaces the content with the cells of a legacy stream.
// A malformed stream returns an error wrapping ErrMalformedLegacy and leaves
// the cell array unchanged.
func (c *CellArray) ImportLegacyFormat(data []ID) error {
	s, err := scanLegacy(data)
	if err == nil {
		c.Reset()
		c.appendLegacy(s)
	}
	c.opts.logger.LogLegacy(context.Background(), "import", len(data), err)
	c.opts.metricsCollector.RecordLegacy("import", len(data), err)
	return err
}

// AppendLegacyFormat appends the cells of a legacy stream, adding pointOffset
// to every point id. On error the cell array is unchanged.
func (c *CellArray) AppendLegacyFormat(data []ID, pointOffset ID) error {
	s, err := scanLegacy(data)
	if err == nil {
		s.pointOffset = pointOffset
		c.appendLegacy(s)
	}
	c.opts.logger.LogLegacy(context.Background(), "append", len(data), err)
	c.opts.metricsCollector.RecordLegacy("append", len(data), err)
	return err
}

func (c *CellArray) appendLegacy(s legacyStream) {
	if s.numCells == 0 {
		return
	}
	if !c.store().Is64Bit() {
		c.fit(s.lo+s.pointOffset, max(s.hi+s.pointOffset, ID(c.NumberOfConnectivityIDs()+s.numIDs)))
	}
	dispatch.Apply(c.pair(), appendLegacy[int32], appendLegacy[int64], s)
	c.structural()
}

func appendLegacy[T storage.Index](a *storage.Arrays[T], s legacyStream) struct{} {
	_ = a.Offsets.Reserve(a.Offsets.Len() + s.numCells)
	_ = a.Connectivity.Reserve(a.Connectivity.Len() + s.numIDs)
	for i := 0; i < len(s.data); {
		n := int(s.data[i])
		for _, p := range s.data[i+1 : i+1+n] {
			a.Connectivity.Append(T(p + s.pointOffset))
		}
		a.Offsets.Append(T(a.Connectivity.Len()))
		i += n + 1
	}
	return struct{}{}
}

// ExportLegacyFormat returns the content as a legacy stream.
func (c *CellArray) ExportLegacyFormat() []ID {
	out := make([]ID, 0, c.NumberOfConnectivityIDs()+c.NumberOfCells())
	it := c.NewIterator()
	for it.GoToFirstCell(); !it.IsDoneWithTraversal(); it.GoToNextCell() {
		pts := it.CurrentCell()
		out = append(out, ID(len(pts)))
		out = append(out, pts...)
	}
	c.opts.metricsCollector.RecordLegacy("export", len(out), nil)
	return out
}

// CellIDToLocation returns the legacy location of cell id.
//
// Deprecated: Use cell ids directly.
func (c *CellArray) CellIDToLocation(id ID) ID {
	return id + c.Offset(int(id))
}

// LocationToCellID returns the cell whose legacy record starts at loc, or -1.
//
// Deprecated: Use cell ids directly.
func (c *CellArray) LocationToCellID(loc ID) ID {
	return dispatch.Apply(c.pair(), locationToCell[int32], locationToCell[int64], loc)
}

func locationToCell[T storage.Index](a *storage.Arrays[T], loc ID) ID {
	return dispatch.LocationToCell(a.Offsets.Values(), loc)
}

// GetCell returns the cell whose legacy record starts at loc and its point
// ids. It returns (-1, nil) when loc is not the start of a cell.
//
// Deprecated: Use CellAtID or an Iterator.
func (c *CellArray) GetCell(loc ID) (ID, []ID) {
	id := c.LocationToCellID(loc)
	if id < 0 {
		return -1, nil
	}
	return id, c.CellAtID(id, nil)
}

// InitTraversal rewinds the built-in traversal cursor.
//
// Deprecated: Use NewIterator.
func (c *CellArray) InitTraversal() { c.traversalCellID = 0 }

// NextCell returns the cell at the traversal cursor and advances it.
// ok is false past the last cell. The slice is reused by the next call.
//
// Deprecated: Use NewIterator.
func (c *CellArray) NextCell() (pts []ID, ok bool) {
	if c.traversalCellID < 0 || c.traversalCellID >= ID(c.NumberOfCells()) {
		return nil, false
	}
	pts, copied := c.cellAt(c.traversalCellID, c.traversalBuf)
	if copied {
		c.traversalBuf = pts
	}
	c.traversalCellID++
	return pts, true
}

// TraversalCellID returns the traversal cursor.
//
// Deprecated: Use NewIterator.
func (c *CellArray) TraversalCellID() ID { return c.traversalCellID }

// SetTraversalCellID moves the traversal cursor.
//
// Deprecated: Use Iterator.GoToCell.
func (c *CellArray) SetTraversalCellID(id ID) { c.traversalCellID = id }

// TraversalLocation returns the legacy location of the traversal cursor.
//
// Deprecated: Use NewIterator.
func (c *CellArray) TraversalLocation() ID {
	return c.CellIDToLocation(c.traversalCellID)
}

// SetTraversalLocation moves the traversal cursor to the cell starting at loc.
//
// Deprecated: Use Iterator.GoToCell.
func (c *CellArray) SetTraversalLocation(loc ID) error {
	id := c.LocationToCellID(loc)
	if id < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLocation, loc)
	}
	c.traversalCellID = id
	return nil
}

// InsertLocation returns the legacy location of the last inserted cell, given
// that it has npts points.
//
// Deprecated: Use the id returned by InsertNextCell.
func (c *CellArray) InsertLocation(npts int) ID {
	return ID(c.NumberOfConnectivityIDs()+c.NumberOfCells()) - ID(npts) - 1
}

// ReverseCell reverses the cell whose legacy record starts at loc.
//
// Deprecated: Use ReverseCellAtID.
func (c *CellArray) ReverseCell(loc ID) error {
	id := c.LocationToCellID(loc)
	if id < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLocation, loc)
	}
	return c.ReverseCellAtID(id)
}

// ReplaceCell overwrites the cell whose legacy record starts at loc.
//
// Deprecated: Use ReplaceCellAtID.
func (c *CellArray) ReplaceCell(loc ID, pts []ID) error {
	id := c.LocationToCellID(loc)
	if id < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLocation, loc)
	}
	return c.ReplaceCellAtID(id, pts)
}
