package cellgo

import "iter"

// Iterator walks the cells of a CellArray in id order.
//
// Typical use:
//
//	it := cells.NewIterator()
//	for it.GoToFirstCell(); !it.IsDoneWithTraversal(); it.GoToNextCell() {
//		pts := it.CurrentCell()
//		...
//	}
//	if err := it.Err(); err != nil {
//		...
//	}
//
// The cell count is captured when the traversal starts. A structural
// mutation of the array (insert, append, allocate, conversion, ...) ends the
// traversal and Err reports ErrStaleIterator; GoToFirstCell or GoToCell
// starts over against the new content. Several iterators may read one array
// concurrently.
type Iterator struct {
	ca       *CellArray
	gen      uint64
	numCells ID
	cur      ID
	scratch  []ID
	err      error
}

// NewIterator returns an iterator positioned at the first cell.
func (c *CellArray) NewIterator() *Iterator {
	it := &Iterator{ca: c}
	it.GoToFirstCell()
	return it
}

func (it *Iterator) bind() {
	it.gen = it.ca.gen
	it.numCells = ID(it.ca.NumberOfCells())
	it.err = nil
}

// GoToFirstCell restarts the traversal at cell 0.
func (it *Iterator) GoToFirstCell() {
	it.bind()
	it.cur = 0
}

// GoToCell positions the iterator at cell id. An id outside
// [0, NumberOfCells()) ends the traversal.
func (it *Iterator) GoToCell(id ID) {
	it.bind()
	if id < 0 || id > it.numCells {
		id = it.numCells
	}
	it.cur = id
}

// GoToNextCell advances to the next cell.
func (it *Iterator) GoToNextCell() {
	if it.stale() {
		return
	}
	if it.cur < it.numCells {
		it.cur++
	}
}

// stale records ErrStaleIterator once the array has been structurally mutated.
func (it *Iterator) stale() bool {
	if it.err == nil && it.ca.gen != it.gen {
		it.err = ErrStaleIterator
	}
	return it.err != nil
}

// IsDoneWithTraversal reports whether the traversal has passed the last cell
// or was ended by a structural mutation.
func (it *Iterator) IsDoneWithTraversal() bool {
	return it.stale() || it.cur >= it.numCells
}

// CurrentCellID returns the id of the current cell.
func (it *Iterator) CurrentCellID() ID { return it.cur }

// CurrentCell returns the point ids of the current cell, or nil when the
// traversal is done. The slice is valid until the next call on the iterator
// and must not be retained; with 64-bit storage it aliases the array.
func (it *Iterator) CurrentCell() []ID {
	if it.IsDoneWithTraversal() {
		return nil
	}
	return it.load(it.cur)
}

// CellAtID returns the point ids of cell id without moving the iterator.
// The same aliasing rules as CurrentCell apply.
func (it *Iterator) CellAtID(id ID) []ID {
	if it.stale() || id < 0 || id >= it.numCells {
		return nil
	}
	return it.load(id)
}

func (it *Iterator) load(id ID) []ID {
	pts, copied := it.ca.cellAt(id, it.scratch)
	if copied {
		it.scratch = pts
	}
	return pts
}

// ReplaceCurrentCell overwrites the current cell. The point count must not change.
func (it *Iterator) ReplaceCurrentCell(pts []ID) error {
	if it.IsDoneWithTraversal() {
		return it.doneErr()
	}
	return it.ca.ReplaceCellAtID(it.cur, pts)
}

// ReverseCurrentCell reverses the point order of the current cell.
func (it *Iterator) ReverseCurrentCell() error {
	if it.IsDoneWithTraversal() {
		return it.doneErr()
	}
	return it.ca.ReverseCellAtID(it.cur)
}

func (it *Iterator) doneErr() error {
	if it.err != nil {
		return it.err
	}
	return &CellIDError{ID: it.cur, NumCells: int(it.numCells)}
}

// Err returns ErrStaleIterator if a structural mutation ended the traversal, nil otherwise.
func (it *Iterator) Err() error { return it.err }

// Cells returns a sequence over (id, points) in id order, driven by an
// Iterator. The points slice follows the aliasing rules of CurrentCell. The
// sequence stops early if the array is structurally mutated while ranging.
func (c *CellArray) Cells() iter.Seq2[ID, []ID] {
	return func(yield func(ID, []ID) bool) {
		it := c.NewIterator()
		for ; !it.IsDoneWithTraversal(); it.GoToNextCell() {
			if !yield(it.CurrentCellID(), it.CurrentCell()) {
				return
			}
		}
	}
}
