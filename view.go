package cellgo

// CellView is a checked handle to one cell.
//
// Unlike the slice returned by CellAtID, a view detects structural mutations
// of its array: after one, every accessor fails with ErrStaleView. In-place
// edits (ReplaceCellAtID, ReverseCellAtID) keep views valid and are visible
// through them.
type CellView struct {
	ca  *CellArray
	id  ID
	gen uint64
}

// CellView returns a view of cell id.
func (c *CellArray) CellView(id ID) (CellView, error) {
	if err := c.checkID(id); err != nil {
		return CellView{}, err
	}
	return CellView{ca: c, id: id, gen: c.gen}, nil
}

// ID returns the cell id of the view.
func (v CellView) ID() ID { return v.id }

// Valid reports whether the view still refers to unchanged storage.
func (v CellView) Valid() bool { return v.ca != nil && v.ca.gen == v.gen }

// Size returns the number of points in the cell.
func (v CellView) Size() (int, error) {
	if !v.Valid() {
		return 0, ErrStaleView
	}
	return v.ca.CellSize(v.id), nil
}

// Points returns the point ids of the cell. With 64-bit storage the result
// aliases the array; with 32-bit storage it is a fresh copy.
func (v CellView) Points() ([]ID, error) {
	if !v.Valid() {
		return nil, ErrStaleView
	}
	return v.ca.CellAtID(v.id, nil), nil
}

// At returns the point at position idx of the cell.
func (v CellView) At(idx int) (ID, error) {
	if !v.Valid() {
		return 0, ErrStaleView
	}
	pts := v.ca.CellAtID(v.id, nil)
	if idx < 0 || idx >= len(pts) {
		return 0, &PointIndexError{CellID: v.id, Index: idx, Size: len(pts)}
	}
	return pts[idx], nil
}
